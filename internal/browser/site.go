package browser

import (
	"fmt"
	"strings"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/scraper"
)

// Site describes one job board rendered in the browser.
type Site struct {
	ID       string
	Name     string
	StartURL string
	// Card selects one element per posting.
	Card   string
	Fields map[string]scraper.SelectorList
	// IDAttr is read from the card; with URLTemplate it builds the posting
	// link when the card has no anchor.
	IDAttr      string
	URLTemplate string

	DefaultLocation string
	RemoteType      string
	Region          string
	CountryCode     string
}

// Source presents the site to the normalizer.
func (s Site) Source() config.Source {
	return config.Source{
		ID:       s.ID,
		Name:     s.Name,
		Kind:     config.KindHTML,
		StartURL: s.StartURL,
		Derive: config.DeriveConfig{
			RemoteType:  s.RemoteType,
			Region:      s.Region,
			CountryCode: s.CountryCode,
		},
	}
}

var Sites = []Site{
	{
		ID:              "remoteok",
		Name:            "RemoteOK",
		StartURL:        "https://remoteok.com/",
		Card:            "tr.job",
		Fields:          fields("h2", ".company", ".location", "", "", ".tag"),
		IDAttr:          "data-id",
		URLTemplate:     "https://remoteok.com/remote-jobs/{id}",
		DefaultLocation: "Remote",
		RemoteType:      config.RemoteTypeRemote,
		Region:          "GLOBAL",
	},
	{
		ID:              "weworkremotely",
		Name:            "We Work Remotely",
		StartURL:        "https://weworkremotely.com/categories/remote-programming-jobs",
		Card:            "li.feature",
		Fields:          fields(".title", ".company", ".region", "a", "", ""),
		DefaultLocation: "Remote",
		RemoteType:      config.RemoteTypeRemote,
		Region:          "GLOBAL",
	},
	{
		ID:              "remotive",
		Name:            "Remotive",
		StartURL:        "https://remotive.io/remote-jobs/software-dev",
		Card:            ".job-tile",
		Fields:          fields(".job-tile-title", ".company", ".location", "a", ".salary", ".tags"),
		DefaultLocation: "Remote",
		RemoteType:      config.RemoteTypeRemote,
		Region:          "GLOBAL",
	},
	{
		ID:              "workingnomads",
		Name:            "Working Nomads",
		StartURL:        "https://www.workingnomads.com/jobs?category=development",
		Card:            ".job-list-item",
		Fields:          fields("h3 a", ".company", ".location", "h3 a", "", ""),
		DefaultLocation: "Remote",
		RemoteType:      config.RemoteTypeRemote,
		Region:          "GLOBAL",
	},
	{
		ID:              "justremote",
		Name:            "JustRemote",
		StartURL:        "https://justremote.co/remote-developer-jobs",
		Card:            ".job-card",
		Fields:          fields("h3 a", ".company-name", ".location", "h3 a", "", ""),
		DefaultLocation: "Remote",
		RemoteType:      config.RemoteTypeRemote,
		Region:          "GLOBAL",
	},
	{
		ID:              "remoteco",
		Name:            "Remote.co",
		StartURL:        "https://remote.co/remote-jobs/developer/",
		Card:            ".job",
		Fields:          fields(".job_title a", ".company", ".location", ".job_title a", "", ""),
		DefaultLocation: "Remote",
		RemoteType:      config.RemoteTypeRemote,
		Region:          "GLOBAL",
	},
	{
		ID:              "remoteio",
		Name:            "Remote.io",
		StartURL:        "https://remote.io/remote-developer-jobs",
		Card:            ".job-card",
		Fields:          fields(".job-title", ".company-name", ".location", "a", "", ""),
		DefaultLocation: "Remote",
		RemoteType:      config.RemoteTypeRemote,
		Region:          "GLOBAL",
	},
	{
		ID:              "infostud",
		Name:            "Poslovi Infostud",
		StartURL:        "https://www.poslovi.infostud.com/poslovi",
		Card:            ".job-list-item",
		Fields:          fields(".job-title", ".company-name", ".location", "a", ".salary", ""),
		DefaultLocation: "Beograd, Srbija",
		RemoteType:      config.RemoteTypeHybrid,
		Region:          "BALKAN",
		CountryCode:     "RS",
	},
	{
		ID:              "halooglasi",
		Name:            "Halo Oglasi",
		StartURL:        "https://www.halooglasi.rs/poslovi",
		Card:            ".product-item",
		Fields:          fieldsWithDescription("h3.product-title a", "", ".product-location", "h3.product-title a", ".product-price", ".product-description"),
		DefaultLocation: "Beograd, Srbija",
		RemoteType:      config.RemoteTypeHybrid,
		Region:          "BALKAN",
		CountryCode:     "RS",
	},
}

func fields(title, company, location, link, salary, tags string) map[string]scraper.SelectorList {
	m := map[string]scraper.SelectorList{"title": {title}}
	for name, sel := range map[string]string{
		"company":  company,
		"location": location,
		"url":      link,
		"salary":   salary,
		"tags":     tags,
	} {
		if sel != "" {
			m[name] = scraper.SelectorList{sel}
		}
	}
	return m
}

func fieldsWithDescription(title, company, location, link, salary, description string) map[string]scraper.SelectorList {
	m := fields(title, company, location, link, salary, "")
	m["description"] = scraper.SelectorList{description}
	return m
}

// Lookup returns the named sites in registry order; no ids means all.
func Lookup(ids []string) ([]Site, error) {
	if len(ids) == 0 {
		return Sites, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}

	var sites []Site
	for _, s := range Sites {
		if wanted[s.ID] {
			sites = append(sites, s)
			delete(wanted, s.ID)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for id := range wanted {
			unknown = append(unknown, id)
		}
		return nil, fmt.Errorf("unknown site(s): %s", strings.Join(unknown, ", "))
	}
	return sites, nil
}
