package store

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/uniuri"
)

const (
	maxSlugLen      = 48
	slugSuffixLen   = 4
	maxSlugAttempts = 3
)

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives an identifier from a dealer name: lower-cased,
// non-alphanumeric runs collapsed to single hyphens, leading and trailing
// hyphens stripped, truncated to 48 characters. An empty result falls back to
// a timestamp-derived token.
func slugify(name string) string {
	s := nonAlnumRuns.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")

	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}

	if s == "" {
		s = strconv.FormatInt(time.Now().UnixMilli(), 36)
	}

	return s
}

// slugSuffix returns a short random suffix for id collision retries.
func slugSuffix() string {
	return "-" + uniuri.NewLenChars(slugSuffixLen, uniuri.LowerChars)
}
