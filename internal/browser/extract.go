package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remotebalkan-scraper/internal/scraper"
)

const defaultCompany = "Unknown Company"

// ExtractCards reads up to max postings from a rendered page. Cards
// without a title or a link are skipped.
func ExtractCards(html string, site Site, max int) ([]scraper.RawJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered page: %w", err)
	}

	var jobs []scraper.RawJob
	doc.Find(site.Card).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if max > 0 && len(jobs) >= max {
			return false
		}
		if job, ok := extractCard(card, site); ok {
			jobs = append(jobs, job)
		}
		return true
	})
	return jobs, nil
}

func extractCard(card *goquery.Selection, site Site) (scraper.RawJob, bool) {
	title := scraper.FirstText(card, site.Fields["title"])
	if title == "" {
		return nil, false
	}

	href := scraper.ResolveURL(site.StartURL, scraper.FirstAttr(card, site.Fields["url"], "href"))
	if href == "" && site.IDAttr != "" && site.URLTemplate != "" {
		if id, ok := card.Attr(site.IDAttr); ok && strings.TrimSpace(id) != "" {
			href = strings.ReplaceAll(site.URLTemplate, "{id}", strings.TrimSpace(id))
		}
	}
	if href == "" {
		return nil, false
	}

	company := scraper.FirstText(card, site.Fields["company"])
	if company == "" {
		company = defaultCompany
	}
	location := scraper.FirstText(card, site.Fields["location"])
	if location == "" {
		location = site.DefaultLocation
	}
	description := scraper.FirstText(card, site.Fields["description"])
	if description == "" {
		description = title + " at " + company
	}

	job := scraper.RawJob{
		"title":       title,
		"company":     company,
		"location":    location,
		"url":         href,
		"description": description,
	}
	if salary := scraper.FirstText(card, site.Fields["salary"]); salary != "" {
		job["salary"] = salary
	}
	if tags := cardTags(card, site.Fields["tags"]); len(tags) > 0 {
		job["tags"] = tags
	}
	return job, true
}

// cardTags collects the text of every element matching the first selector
// that finds any.
func cardTags(card *goquery.Selection, selectors []string) []string {
	for _, sel := range selectors {
		var tags []string
		card.Find(sel).Each(func(i int, s *goquery.Selection) {
			if t := scraper.CleanText(s.Text()); t != "" {
				tags = append(tags, t)
			}
		})
		if len(tags) > 0 {
			return tags
		}
	}
	return nil
}
