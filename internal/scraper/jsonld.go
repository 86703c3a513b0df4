package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// ExtractJSONLD collects schema.org JobPosting items from every
// application/ld+json script. Broken scripts are skipped and reported
// in the returned error; the jobs found elsewhere are still returned.
func ExtractJSONLD(doc *goquery.Document) ([]RawJob, error) {
	var (
		jobs []RawJob
		errs []error
	)

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, script *goquery.Selection) {
		body := strings.TrimSpace(script.Text())
		if body == "" {
			return
		}
		if !gjson.Valid(body) {
			errs = append(errs, fmt.Errorf("ld+json script %d: invalid JSON", i))
			return
		}

		data := gjson.Parse(body)
		if graph := member(data, "@graph"); graph.Exists() {
			data = graph
		}

		var items []gjson.Result
		switch {
		case data.IsArray():
			items = data.Array()
		case data.IsObject():
			items = []gjson.Result{data}
		}

		for _, item := range items {
			if !item.IsObject() {
				continue
			}
			if !strings.Contains(member(item, "@type").String(), "JobPosting") {
				continue
			}
			jobs = append(jobs, jobPosting(item))
		}
	})

	return jobs, errors.Join(errs...)
}

func jobPosting(item gjson.Result) RawJob {
	job := RawJob{
		"title":           CleanText(item.Get("title").String()),
		"company":         organizationName(item.Get("hiringOrganization")),
		"location":        locationName(item.Get("jobLocation")),
		"description":     SanitizeHTML(item.Get("description").String()),
		"posted_at":       item.Get("datePosted").String(),
		"url":             item.Get("url").String(),
		"employment_type": listOrString(item.Get("employmentType")),
	}

	salary := item.Get("baseSalary")
	if value := salary.Get("value"); salary.IsObject() && value.IsObject() {
		if v := value.Get("minValue"); v.Exists() {
			job["salary_min"] = v.Value()
		}
		if v := value.Get("maxValue"); v.Exists() {
			job["salary_max"] = v.Value()
		}
		currency := value.Get("currency").String()
		if currency == "" {
			currency = salary.Get("currency").String()
		}
		if currency != "" {
			job["salary_currency"] = currency
		}
	}

	return job
}

func organizationName(org gjson.Result) string {
	switch {
	case org.Type == gjson.String:
		return CleanText(org.String())
	case org.IsObject():
		return CleanText(org.Get("name").String())
	}
	return ""
}

func locationName(loc gjson.Result) string {
	switch {
	case loc.Type == gjson.String:
		return CleanText(loc.String())
	case loc.IsArray():
		first := loc.Get("0")
		if !first.Exists() {
			return ""
		}
		return locationName(first)
	case loc.IsObject():
		if addr := loc.Get("address"); addr.IsObject() {
			if locality := addr.Get("addressLocality").String(); locality != "" {
				return CleanText(locality)
			}
			country := addr.Get("addressCountry")
			if country.IsObject() {
				return CleanText(country.Get("name").String())
			}
			return CleanText(country.String())
		}
		return CleanText(loc.Get("name").String())
	}
	return ""
}

func listOrString(r gjson.Result) string {
	if !r.IsArray() {
		return r.String()
	}
	var parts []string
	for _, v := range r.Array() {
		if s := v.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// member looks up a key literally. gjson paths treat a leading '@' as a
// modifier, so keys like "@type" cannot go through Get.
func member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	if !obj.IsObject() {
		return found
	}
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
			return false
		}
		return true
	})
	return found
}
