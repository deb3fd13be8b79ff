// Package fetch - platform.go provides source-type detection and per-source selectors.
package fetch

import (
	"net/url"
	"strings"
)

// SourceType classifies a research source URL by the kind of site serving it.
type SourceType string

const (
	// SourceWikipedia is a Wikipedia or other MediaWiki page
	SourceWikipedia SourceType = "wikipedia"
	// SourceOfficial is a government or institutional portal
	SourceOfficial SourceType = "official"
	// SourceNews is a news or magazine article page
	SourceNews SourceType = "news"
	// SourceUnknown is an unrecognized source
	SourceUnknown SourceType = "unknown"
)

// DetectSourceType identifies the source type from a URL.
func DetectSourceType(urlStr string) SourceType {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return SourceUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "wikipedia.org") ||
		strings.Contains(host, "wikivoyage.org") {
		return SourceWikipedia
	}

	if strings.HasSuffix(host, ".gov") ||
		strings.Contains(host, ".gov.") ||
		strings.HasSuffix(host, ".gob.es") ||
		strings.HasSuffix(host, ".gov.pt") ||
		strings.Contains(host, "europa.eu") {
		return SourceOfficial
	}

	if strings.Contains(host, "news") ||
		strings.Contains(host, "reuters.com") ||
		strings.Contains(host, "bloomberg.com") ||
		strings.Contains(host, "ft.com") {
		return SourceNews
	}

	return SourceUnknown
}

// SourceContentSelectors returns content selectors optimized for a source type.
func SourceContentSelectors(sourceType SourceType) []string {
	switch sourceType {
	case SourceWikipedia:
		return []string{
			"#mw-content-text",
			".mw-parser-output",
			"#bodyContent",
			"#content",
		}
	case SourceOfficial:
		return OfficialPageSelectors()
	case SourceNews:
		return ArticlePageSelectors()
	default:
		return DefaultTextSelectors()
	}
}

// SourceNoiseSelectors returns noise exclusion selectors for a source type.
func SourceNoiseSelectors(sourceType SourceType) []string {
	// Common noise selectors for all source types
	common := []string{
		// Subscription and signup prompts
		".newsletter-signup",
		".subscribe-banner",
		".paywall",
		".registration-wall",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",

		// Related-content widgets
		".related-articles",
		".recommended",
		".trending",
	}

	switch sourceType {
	case SourceWikipedia:
		return append(common,
			".navbox",
			".infobox",
			".mw-editsection",
			".reference",
			"#toc",
			".toc",
			".mw-jump-link",
		)
	case SourceNews:
		return append(common,
			".comments",
			".comment-section",
			".author-bio",
			".inline-newsletter",
		)
	default:
		return common
	}
}
