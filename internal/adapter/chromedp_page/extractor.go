package chromedp_page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/pkg/jobid"
)

// ExtractCandidate parses the outer HTML of a reported card and resolves its job id.
// A card whose id cannot be found yet comes back with an empty JobID.
func ExtractCandidate(key, outerHTML string) (entity.CandidateElement, error) {
	cand := entity.CandidateElement{Key: key, State: entity.CandidateUnresolved}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(outerHTML))
	if err != nil {
		return cand, fmt.Errorf("parse card html: %w", err)
	}
	cand.JobID = ExtractJobID(doc.Selection)
	return cand, nil
}

// ExtractJobID looks for an id on sel and its descendants: id attributes first, then URN
// attributes, then job links. Document order puts the card itself before its children.
func ExtractJobID(sel *goquery.Selection) string {
	for _, attr := range JobIDAttributes {
		if v := firstAttr(sel, attr); jobid.IsNumeric(v) {
			return v
		}
	}
	for _, attr := range URNAttributes {
		if id := jobid.FromURN(firstAttr(sel, attr)); id != "" {
			return id
		}
	}

	var id string
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		id = jobid.FromURL(strings.TrimSpace(href))
		return id == ""
	})
	return id
}

func firstAttr(sel *goquery.Selection, attr string) string {
	v, _ := sel.Find(fmt.Sprintf("[%s]", attr)).First().Attr(attr)
	return strings.TrimSpace(v)
}
