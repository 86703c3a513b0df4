package normalize

import (
	"strings"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/scraper"
)

// Keywords are matched against folded text, so they carry no diacritics.
var (
	remoteKeywords = []string{"remote", "daljinsk", "удаљен", "rad od kuce"}
	hybridKeywords = []string{"hybrid", "hibrid", "хибридн", "fleksibil"}
	onsiteKeywords = []string{"onsite", "on-site", "on site", "office", "kancelarij", "канцеларијск", "na lokaciji"}
)

// DetectRemoteType classifies free text. Remote wins over hybrid, hybrid
// over onsite.
func DetectRemoteType(text string) string {
	folded := scraper.Fold(text)
	if folded == "" {
		return config.RemoteTypeUnknown
	}
	switch {
	case containsAny(folded, remoteKeywords):
		return config.RemoteTypeRemote
	case containsAny(folded, hybridKeywords):
		return config.RemoteTypeHybrid
	case containsAny(folded, onsiteKeywords):
		return config.RemoteTypeOnsite
	}
	return config.RemoteTypeUnknown
}

// WorkType maps a remote type onto the work_type column.
func WorkType(remoteType string) string {
	switch remoteType {
	case config.RemoteTypeRemote:
		return "remote"
	case config.RemoteTypeHybrid:
		return "hybrid"
	}
	return "onsite"
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
