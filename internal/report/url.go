package report

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var reportURLPattern = regexp.MustCompile(`^https://(dps|wvw)\.report/[^/]+$`)

// ParseReportURL validates a pasted report link and returns its slug.
func ParseReportURL(text string) (string, error) {
	text = strings.TrimSpace(text)
	if !reportURLPattern.MatchString(text) {
		return "", ErrBadReportURL
	}
	u, err := url.Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadReportURL, err)
	}
	slug := strings.TrimPrefix(u.Path, "/")
	if slug == "" {
		return "", ErrBadReportURL
	}
	return slug, nil
}
