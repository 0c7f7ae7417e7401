package research

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Credibility is the coarse trust classification of a source URL.
type Credibility string

const (
	CredibilityHigh   Credibility = "high"
	CredibilityMedium Credibility = "medium"
	// CredibilityLow is reserved for future policy refinement; the baseline
	// rules never produce it.
	CredibilityLow Credibility = "low"
)

// trustedDomains are hosts treated as high-credibility regardless of TLD.
var trustedDomains = []string{
	"wikipedia.org",
}

// AssessCredibility classifies a source URL. Government and academic
// domains and known high-trust hosts rate high; everything else medium.
func AssessCredibility(source string) Credibility {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return CredibilityMedium
	}
	host := strings.ToLower(u.Hostname())

	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") {
		return CredibilityHigh
	}
	for _, d := range trustedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return CredibilityHigh
		}
	}
	return CredibilityMedium
}

// Recency is the coarse freshness classification of summary text.
type Recency string

const (
	RecencyRecent   Recency = "recent"
	RecencyOutdated Recency = "outdated"
)

var yearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// CheckRecency scans text for four-digit years in [1900, 2099]. When the
// most recent year found is more than five years older than now the text is
// outdated. Text without any year defaults to recent.
func CheckRecency(text string, now time.Time) Recency {
	latest := 0
	for _, m := range yearRe.FindAllString(text, -1) {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if year > latest {
			latest = year
		}
	}
	if latest == 0 {
		return RecencyRecent
	}
	if now.Year()-latest > 5 {
		return RecencyOutdated
	}
	return RecencyRecent
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+\s+`)

// SplitSentences breaks summary text into trimmed sentences, dropping
// fragments too short to carry a claim.
func SplitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimRight(p, ".!?"))
		if len(p) < 3 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// truncate bounds s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
