// Package feed extracts article records from raw RSS documents with
// tolerant pattern matching. Atom <entry> vocabulary is intentionally
// not recognized; an Atom document yields zero articles.
package feed

import (
	"regexp"
	"strings"

	"github.com/Hunterhghs/HHeuristics-News/internal/news"
)

const (
	// DescriptionLimit is the max description length in runes,
	// ellipsis included.
	DescriptionLimit = 320
)

var (
	itemRe  = regexp.MustCompile(`(?is)<item\b[^>]*>(.*?)</item>`)
	titleRe = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title>`)
	linkRe  = regexp.MustCompile(`(?is)<link\b[^>]*>(.*?)</link>`)
	dateRe  = regexp.MustCompile(`(?is)<pubDate\b[^>]*>(.*?)</pubDate>`)
	descRe  = regexp.MustCompile(`(?is)<description\b[^>]*>(.*?)</description>`)

	cdataRe = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*?)\]\]>\s*$`)
	breakRe = regexp.MustCompile(`(?i)<br\s*/?>|</?p\b[^>]*>|</?div\b[^>]*>`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)

	// Single-pass replacement, so escaped sequences like &amp;lt;
	// decode exactly one level.
	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&#39;", "'",
	)
)

// Parse extracts at most limit articles from one raw feed document,
// in document order. Entries missing a title or a link are dropped
// silently; a document with no recognizable items yields nil.
func Parse(doc, sourceName string, limit int) []news.Article {
	fragments := itemRe.FindAllStringSubmatch(doc, -1)
	if len(fragments) == 0 {
		return nil
	}

	articles := make([]news.Article, 0, limit)
	for _, frag := range fragments {
		if len(articles) >= limit {
			break
		}

		body := frag[1]
		title := CleanText(extract(body, titleRe))
		link := strings.TrimSpace(entityReplacer.Replace(extract(body, linkRe)))
		if title == "" || link == "" {
			continue
		}

		articles = append(articles, news.Article{
			Title:       title,
			Source:      sourceName,
			URL:         link,
			PublishedAt: strings.TrimSpace(extract(body, dateRe)),
			Summary:     truncate(CleanText(extract(body, descRe)), DescriptionLimit),
		})
	}
	return articles
}

// extract returns the inner text of the first match, unwrapping one
// CDATA layer when present. Both plain-text and CDATA-wrapped content
// are accepted.
func extract(fragment string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(fragment)
	if m == nil {
		return ""
	}
	if cd := cdataRe.FindStringSubmatch(m[1]); cd != nil {
		return cd[1]
	}
	return m[1]
}

// CleanText normalizes feed text: block-level break markup becomes a
// space, remaining tags are stripped, the common named entities are
// decoded, and whitespace is collapsed.
func CleanText(s string) string {
	s = breakRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to max runes total, ellipsis included.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
