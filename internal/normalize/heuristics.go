package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"remotebalkan-scraper/internal/scraper"
)

// Salary is a parsed pay range.
type Salary struct {
	Min      *float64
	Max      *float64
	Currency string
}

// amount is an integer with optional thousands separators and an optional
// two-digit decimal part ("1.500,00", "80,000", "2500").
const amount = `(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?|\d{1,7}(?:[.,]\d{2})?)`

var (
	eurPattern = regexp.MustCompile(`(?i)` + amount + `\s*[-–]\s*` + amount + `\s*(?:€|eur\b)|€\s*` + amount + `\s*[-–]\s*` + amount)
	usdPattern = regexp.MustCompile(`\$\s*` + amount + `\s*[-–]\s*\$?\s*` + amount)
	rsdPattern = regexp.MustCompile(`(?i)` + amount + `\s*[-–]\s*` + amount + `\s*(?:rsd|din)`)
)

// ExtractSalary finds a range like "2.000-3.000 €", "$80,000 - $120,000"
// or "150000-200000 RSD".
func ExtractSalary(text string) (Salary, bool) {
	if text == "" {
		return Salary{}, false
	}
	if groups := matchedGroups(eurPattern, text); len(groups) >= 2 {
		return salaryRange(groups[0], groups[1], "EUR"), true
	}
	if groups := matchedGroups(usdPattern, text); len(groups) >= 2 {
		return salaryRange(groups[0], groups[1], "USD"), true
	}
	if groups := matchedGroups(rsdPattern, text); len(groups) >= 2 {
		return salaryRange(groups[0], groups[1], "RSD"), true
	}
	return Salary{}, false
}

func matchedGroups(re *regexp.Regexp, text string) []string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var groups []string
	for _, g := range m[1:] {
		if g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

func salaryRange(lo, hi, currency string) Salary {
	return Salary{Min: parseAmount(lo), Max: parseAmount(hi), Currency: currency}
}

func parseAmount(s string) *float64 {
	var cents string
	if n := len(s); n > 3 && (s[n-3] == '.' || s[n-3] == ',') {
		s, cents = s[:n-3], s[n-2:]
	}
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	if cents != "" {
		s += "." + cents
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

var (
	juniorKeywords = []string{"junior", "entry", "pocetn", "почетн"}
	seniorKeywords = []string{"senior", "starij", "старији", "lead", "principal", "architect"}
)

// ExperienceLevel reports junior, senior or mid. The bool is false when
// nothing in the text pointed at a level.
func ExperienceLevel(text string) (string, bool) {
	folded := scraper.Fold(text)
	switch {
	case containsAny(folded, juniorKeywords):
		return "junior", true
	case containsAny(folded, seniorKeywords):
		return "senior", true
	case strings.Contains(folded, "medior") || strings.Contains(folded, "mid-level"):
		return "mid", true
	}
	return "mid", false
}

// EmploymentType defaults to full-time.
func EmploymentType(text string) string {
	folded := scraper.Fold(text)
	switch {
	case containsAny(folded, []string{"part-time", "part time", "part_time", "skracen", "скраћен"}):
		return "part-time"
	case containsAny(folded, []string{"contract", "ugovor", "уговор"}):
		return "contract"
	case containsAny(folded, []string{"freelance", "slobodn"}):
		return "freelance"
	}
	return "full-time"
}
