package chromedp_page

// Job site DOM selectors. These are owned by the site and break when its markup changes;
// inspect a job search page in DevTools to update them.

// JobCardSelectors match job listing nodes, most specific first.
var JobCardSelectors = []string{
	`li[data-occludable-job-id]`,
	`div.job-card-container[data-job-id]`,
	`.jobs-search-results__list-item`,
	`.job-card-container`,
	`.scaffold-layout__list-item`,
	`.jobs-search-results-list__list-item`,
}

// DetailPanelSelectors match the job detail panel the focus overlay attaches to.
var DetailPanelSelectors = []string{
	`.jobs-search__job-details--container`,
	`.jobs-details__main-content`,
	`.job-view-layout`,
	`.jobs-unified-top-card`,
}

// JobIDAttributes are read before falling back to URNs and links.
var JobIDAttributes = []string{
	"data-job-id",
	"data-occludable-job-id",
}

// URNAttributes may carry a jobPosting URN.
var URNAttributes = []string{
	"data-entity-urn",
	"data-urn",
}

const (
	// Set on every reported card so later reports refer to the same node.
	NodeKeyAttribute = "data-ji-key"

	// Overlay classes. The observer never reports nodes inside them.
	OverlayClass = "ji-overlay"
	FocusClass   = "ji-focus"
)
