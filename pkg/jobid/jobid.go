// Package jobid recovers numeric job posting identifiers from URNs and URLs.
package jobid

import "regexp"

var (
	reURN = regexp.MustCompile(`jobPosting:(\d+)`)

	// Tried in order; the first match wins.
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/jobs/view/(\d+)`),
		regexp.MustCompile(`/jobPostings/(\d+)`),
		regexp.MustCompile(`[?&]currentJobId=(\d+)`),
		regexp.MustCompile(`[?&]jobId=(\d+)`),
		regexp.MustCompile(`"jobPostingId"\s*:\s*"?(\d+)`),
	}

	reDigits = regexp.MustCompile(`^\d+$`)
)

// FromURN extracts the id from strings like "urn:li:fs_normalized_jobPosting:123".
func FromURN(urn string) string {
	if m := reURN.FindStringSubmatch(urn); m != nil {
		return m[1]
	}
	return ""
}

// FromURL extracts an id from a job URL, a query string, or an embedded JSON fragment.
func FromURL(s string) string {
	if s == "" {
		return ""
	}
	for _, re := range urlPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// IsNumeric reports whether s is a non-empty run of digits.
func IsNumeric(s string) bool {
	return reDigits.MatchString(s)
}
