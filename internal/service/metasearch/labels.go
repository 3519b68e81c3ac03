package metasearch

import (
	"net"
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
	"golang.org/x/net/publicsuffix"
)

var (
	tagPattern    = regexp.MustCompile(`</?[^>]+(>|$)`)
	titleSplitter = regexp.MustCompile(`( [|\-/:»] )|( - )|(\|)`)
	prefixPattern = regexp.MustCompile(`(?i)(http://|https://|www.)`)
	hostPattern   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?([^/:?\s]+)(?:[/:?]|$)`)
	wordStart     = regexp.MustCompile(`\b\w`)
)

// entity pairs are applied in order, each over the whole string
var entities = [][2]string{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

const faviconService = "https://www.google.com/s2/favicons?domain="

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

func decodeEntities(s string) string {
	for _, e := range entities {
		s = strings.ReplaceAll(s, e[0], e[1])
	}
	return s
}

// cleanTitle removes markup and collapses breadcrumb titles such as
// "Site | Section | Actual headline" to their longest segment.
func cleanTitle(raw string) string {
	title := stripTags(raw)
	if titleSplitter.MatchString(title) {
		parts := titleSplitter.Split(title, -1)
		if len(parts) >= 2 {
			longest := ""
			for _, part := range parts {
				if len(part) > len(longest) {
					longest = part
				}
			}
			if len(longest) > 10 {
				title = strings.TrimSpace(longest)
			}
		}
	}
	return decodeEntities(title)
}

// domainOf returns the host part of a result URL with scheme and www removed.
func domainOf(rawURL string) string {
	trimmed := prefixPattern.ReplaceAllString(rawURL, "")
	domain, _, _ := strings.Cut(trimmed, "/")
	return domain
}

// faviconURL keys the favicon service by the result's host.
func faviconURL(rawURL string) string {
	m := hostPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return faviconService + m[1] + "&sz=16"
}

// sourceFromDomain derives a display label from the registrable domain:
// "nytimes.com" -> "Nytimes", "bbc.co.uk" -> "BBC".
func sourceFromDomain(domain string) string {
	host := domain
	if h, _, err := net.SplitHostPort(domain); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(host)
	label := strings.TrimSuffix(registrable, "."+suffix)
	if label == "" {
		return ""
	}

	label = wordStart.ReplaceAllStringFunc(label, strings.ToUpper)
	if len(label) < 5 {
		label = strings.ToUpper(label)
	}
	return label
}

// parseMetadata reads SearXNG "date | source" metadata strings.
// Returns empty values when the string has no separator.
func parseMetadata(metadata string) (date, source string) {
	parts := strings.Split(metadata, "|")
	if len(parts) < 2 {
		return "", ""
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	for _, part := range parts {
		if part == "" {
			continue
		}
		if t, err := dateparse.ParseAny(part); err == nil {
			date = t.Format("2006-01-02")
			break
		}
	}
	return date, parts[1]
}
