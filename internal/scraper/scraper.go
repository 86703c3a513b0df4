package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	FieldItem = "item"
	FieldURL  = "url"
)

// Scraper extracts job cards from a listing page with CSS selectors.
// The "item" entry selects the cards; every other entry names a field.
type Scraper struct {
	selectors map[string]SelectorList
}

func NewScraper(selectors map[string]SelectorList) *Scraper {
	return &Scraper{
		selectors: selectors,
	}
}

// CanParse reports whether a card selector is configured.
func (s *Scraper) CanParse() bool {
	return len(s.selectors[FieldItem]) > 0
}

// ParseDocument returns the cards that have a title.
// Cards are taken from the first item selector that matches anything.
func (s *Scraper) ParseDocument(doc *goquery.Document) []RawJob {
	cards := findFirst(doc.Selection, s.selectors[FieldItem])
	if cards == nil {
		return nil
	}

	var jobs []RawJob
	cards.Each(func(i int, card *goquery.Selection) {
		job := RawJob{}
		for field, selectors := range s.selectors {
			if field == FieldItem {
				continue
			}
			var value string
			if field == FieldURL {
				value = FirstAttr(card, selectors, "href")
			} else {
				value = FirstText(card, selectors)
			}
			if value != "" {
				job[field] = value
			}
		}

		// Cards without a title are skipped
		if job.String("title") == "" {
			return
		}
		jobs = append(jobs, job)
	})

	return jobs
}

// CountCards reports how many cards the item selectors match.
func (s *Scraper) CountCards(doc *goquery.Document) int {
	cards := findFirst(doc.Selection, s.selectors[FieldItem])
	if cards == nil {
		return 0
	}
	return cards.Length()
}

func findFirst(root *goquery.Selection, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		found := root.Find(selector)
		if found.Length() > 0 {
			return found
		}
	}
	return nil
}

// FirstText returns the sanitized text of the first selector that yields any.
func FirstText(sel *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		text := CleanText(sel.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// FirstAttr returns the attribute of the first selector that has it.
// An empty selector refers to sel itself.
func FirstAttr(sel *goquery.Selection, selectors []string, attr string) string {
	for _, selector := range selectors {
		target := sel
		if selector != "" {
			target = sel.Find(selector).First()
		}
		value, exists := target.Attr(attr)
		if exists && strings.TrimSpace(value) != "" {
			return normalizeURL(value)
		}
	}
	return ""
}

// ResolveURL makes href absolute against base.
func ResolveURL(base, href string) string {
	href = normalizeURL(href)
	if href == "" || base == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

func normalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	// Fragments never identify a different posting
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}
