package listing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var stripTags = regexp.MustCompile(`<[^>]*>`)

// BookMeta is the bibliographic metadata recoverable from a description's
// HTML detail list.
type BookMeta struct {
	Author string
	Title  string
}

// ExtractBookMeta pulls Author and Title out of an agent-written HTML
// description. The agents emit `<li>Field: value</li>` detail lists; those
// are read with a real HTML parser, with a regexp pass as fallback for the
// malformed fragments older model outputs sometimes contain.
func ExtractBookMeta(descriptionHTML string) BookMeta {
	return BookMeta{
		Author: ExtractHTMLField(descriptionHTML, "Author"),
		Title:  ExtractHTMLField(descriptionHTML, "Title"),
	}
}

// ExtractHTMLField returns the value of a `<li>Field: value</li>` entry, or
// the empty string if the field is absent.
func ExtractHTMLField(descriptionHTML, field string) string {
	if value := extractWithParser(descriptionHTML, field); value != "" {
		return value
	}
	return extractWithPattern(descriptionHTML, field)
}

func extractWithParser(descriptionHTML, field string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(descriptionHTML))
	if err != nil {
		return ""
	}

	prefix := strings.ToLower(field) + ":"
	value := ""
	doc.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		text := strings.TrimSpace(item.Text())
		if len(text) < len(prefix) || !strings.EqualFold(text[:len(prefix)], prefix) {
			return true
		}
		value = strings.TrimSpace(text[len(prefix):])
		return false
	})
	return value
}

func extractWithPattern(descriptionHTML, field string) string {
	pattern, err := regexp.Compile(`(?is)<li>\s*` + regexp.QuoteMeta(field) + `:\s*(.*?)</li>`)
	if err != nil {
		return ""
	}
	match := pattern.FindStringSubmatch(descriptionHTML)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(stripTags.ReplaceAllString(match[1], ""))
}
