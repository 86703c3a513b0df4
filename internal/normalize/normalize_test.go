package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotebalkan-scraper/internal/checksum"
	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/scraper"
	"remotebalkan-scraper/internal/storage"
)

var fixedNow = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return NewNormalizerAt(func() time.Time { return fixedNow })
}

func remoteSource() config.Source {
	return config.Source{
		ID:     "remotive",
		Name:   "Remotive",
		Kind:   config.KindAPI,
		URL:    "https://remotive.com/api/remote-jobs",
		Derive: config.DeriveConfig{RemoteType: config.RemoteTypeRemote},
	}
}

func infostudSource() config.Source {
	return config.Source{
		ID:       "infostud",
		Kind:     config.KindHTML,
		StartURL: "https://poslovi.infostud.com/oglasi-za-posao",
		Derive:   config.DeriveConfig{Region: "BALKAN", CountryCode: "RS"},
	}
}

func TestNormalizeRemote(t *testing.T) {
	n := newTestNormalizer()
	raw := scraper.RawJob{
		"title":      "Go Developer",
		"company":    "Acme",
		"url":        "https://remotive.com/jobs/1",
		"location":   "Worldwide",
		"posted_at":  "2024-10-01T08:00:00Z",
		"salary_min": float64(50000),
		"salary_max": "70,000",
	}

	job := n.Normalize(remoteSource(), raw)
	require.NotNil(t, job.Remote)
	assert.Nil(t, job.Hybrid)

	r := job.Remote
	assert.Equal(t, "b99613ee2f9b08944b3e9a318413e50df3057b73", r.StableKey)
	assert.Equal(t, "remotive", r.SourceID)
	assert.Equal(t, "Remotive", r.SourceName)
	assert.True(t, r.Remote)
	assert.Equal(t, config.RemoteTypeRemote, r.RemoteType)
	assert.Equal(t, "2024-10-01T08:00:00Z", r.PostedAt)
	assert.Equal(t, "https://remotive.com/jobs/1", r.ApplyURL)
	require.NotNil(t, r.SalaryMin)
	require.NotNil(t, r.SalaryMax)
	assert.Equal(t, 50000.0, *r.SalaryMin)
	assert.Equal(t, 70000.0, *r.SalaryMax)
	assert.Equal(t, r.SalaryMin, r.SalaryMinEUR)
	assert.Equal(t, "EUR", r.SalaryCurrency)
	assert.Equal(t, "Worldwide", r.Raw["location"])
}

func TestNormalizeRemoteDefaults(t *testing.T) {
	n := newTestNormalizer()
	src := remoteSource()
	src.Derive.RemoteType = ""

	r := n.Remote(src, scraper.RawJob{"posted_at": "not a date"})
	assert.Equal(t, defaultTitle, r.Title)
	assert.Equal(t, defaultCompany, r.Company)
	assert.Equal(t, config.RemoteTypeRemote, r.RemoteType)
	assert.Equal(t, "2024-10-15T12:00:00Z", r.PostedAt)
	assert.Nil(t, r.SalaryMin)

	want := checksum.NewGenerator().JobID("remotive", "", defaultTitle, defaultCompany)
	assert.Equal(t, want, r.StableKey)
}

func TestNormalizeHybrid(t *testing.T) {
	n := newTestNormalizer()
	raw := scraper.RawJob{
		"title":       "Senior Go programer",
		"description": "<p>Rad od kuće, <b>fleksibilno</b></p>",
		"location":    "Beograd",
		"tags":        "Go, SQL",
		"url":         "https://poslovi.infostud.com/posao/1",
	}

	job := n.Normalize(infostudSource(), raw)
	require.NotNil(t, job.Hybrid)
	assert.Nil(t, job.Remote)

	h := job.Hybrid
	assert.Equal(t, "Rad od kuće, fleksibilno", h.Description)
	assert.Equal(t, defaultCompany, h.CompanyName)
	assert.Equal(t, config.RemoteTypeRemote, h.RemoteType)
	assert.Equal(t, "remote", h.WorkType)
	require.NotNil(t, h.CountryCode)
	assert.Equal(t, "RS", *h.CountryCode)
	assert.Equal(t, "BALKAN", h.Region)
	assert.Equal(t, []string{"Go", "SQL"}, h.Skills)
	assert.Equal(t, h.Skills, h.Technologies)
	assert.Equal(t, "senior", h.ExperienceLevel)
	assert.Equal(t, "full-time", h.EmploymentType)
	assert.Equal(t, "infostud", h.SourceName)
	assert.Equal(t, "https://poslovi.infostud.com/oglasi-za-posao", h.SourceWebsite)
	assert.Equal(t, "2024-10-15T12:00:00Z", h.ScrapedAt)
	assert.Equal(t, "2024-10-15T12:00:00Z", h.PostedDate)
	assert.Equal(t, "EUR", h.SalaryCurrency)
	// base 50, company 10, skills 5, experience 5
	assert.Equal(t, 70, h.QualityScore)

	want := checksum.NewGenerator().JobID("infostud", "https://poslovi.infostud.com/posao/1", "Senior Go programer", defaultCompany)
	assert.Equal(t, want, h.ExternalID)
	assert.Equal(t, h.ExternalID, job.ID())
}

func TestNormalizeHybridKeepsDerivedType(t *testing.T) {
	n := newTestNormalizer()
	src := infostudSource()
	src.Derive.RemoteType = config.RemoteTypeHybrid
	src.Derive.CountryCode = ""

	h := n.Hybrid(src, scraper.RawJob{"title": "Remote QA", "employment_type": "PART_TIME"})
	assert.Equal(t, config.RemoteTypeHybrid, h.RemoteType)
	assert.Equal(t, "hybrid", h.WorkType)
	assert.Nil(t, h.CountryCode)
	assert.Equal(t, []string{}, h.Skills)
	assert.Equal(t, "part-time", h.EmploymentType)
	assert.Equal(t, "mid", h.ExperienceLevel)
}

func TestNormalizeHybridSalaryText(t *testing.T) {
	n := newTestNormalizer()
	h := n.Hybrid(infostudSource(), scraper.RawJob{
		"title":   "Programer",
		"company": "Nordeus",
		"salary":  "150.000 - 200.000 RSD",
	})
	require.NotNil(t, h.SalaryMin)
	require.NotNil(t, h.SalaryMax)
	assert.Equal(t, 150000.0, *h.SalaryMin)
	assert.Equal(t, 200000.0, *h.SalaryMax)
	assert.Equal(t, "RSD", h.SalaryCurrency)
	assert.Equal(t, 80, h.QualityScore)
}

func TestDetectRemoteType(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Fully remote, EU timezone", config.RemoteTypeRemote},
		{"Rad od kuće", config.RemoteTypeRemote},
		{"Rad od kuce", config.RemoteTypeRemote},
		{"Удаљени рад", config.RemoteTypeRemote},
		{"Hybrid role in Novi Sad", config.RemoteTypeHybrid},
		{"Hibridni model rada", config.RemoteTypeHybrid},
		{"Rad u kancelariji", config.RemoteTypeOnsite},
		{"On-site in Belgrade", config.RemoteTypeOnsite},
		{"Backend developer", config.RemoteTypeUnknown},
		{"", config.RemoteTypeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectRemoteType(tt.text), tt.text)
	}
}

func TestWorkType(t *testing.T) {
	assert.Equal(t, "remote", WorkType(config.RemoteTypeRemote))
	assert.Equal(t, "hybrid", WorkType(config.RemoteTypeHybrid))
	assert.Equal(t, "onsite", WorkType(config.RemoteTypeOnsite))
	assert.Equal(t, "onsite", WorkType(config.RemoteTypeUnknown))
}

func TestExtractSalary(t *testing.T) {
	tests := []struct {
		text     string
		min, max float64
		currency string
	}{
		{"2.000-3.000 €", 2000, 3000, "EUR"},
		{"€ 1500 - 2500", 1500, 2500, "EUR"},
		{"1200 – 1800 EUR neto", 1200, 1800, "EUR"},
		{"$80,000 - $120,000", 80000, 120000, "USD"},
		{"150000-200000 din", 150000, 200000, "RSD"},
		{"1.500,00 - 2.000,00 €", 1500, 2000, "EUR"},
		{"1,500.50-2,000.75 EUR", 1500.5, 2000.75, "EUR"},
	}
	for _, tt := range tests {
		s, ok := ExtractSalary(tt.text)
		require.True(t, ok, tt.text)
		require.NotNil(t, s.Min, tt.text)
		require.NotNil(t, s.Max, tt.text)
		assert.Equal(t, tt.min, *s.Min, tt.text)
		assert.Equal(t, tt.max, *s.Max, tt.text)
		assert.Equal(t, tt.currency, s.Currency, tt.text)
	}

	_, ok := ExtractSalary("Competitive")
	assert.False(t, ok)
	_, ok = ExtractSalary("Team spread across 2020-2024 Europe offices")
	assert.False(t, ok)
	_, ok = ExtractSalary("")
	assert.False(t, ok)
}

func TestExperienceLevel(t *testing.T) {
	level, ok := ExperienceLevel("Junior PHP developer")
	assert.Equal(t, "junior", level)
	assert.True(t, ok)

	level, ok = ExperienceLevel("Tech Lead")
	assert.Equal(t, "senior", level)
	assert.True(t, ok)

	level, ok = ExperienceLevel("Programer")
	assert.Equal(t, "mid", level)
	assert.False(t, ok)
}

func TestEmploymentType(t *testing.T) {
	assert.Equal(t, "full-time", EmploymentType("FULL_TIME"))
	assert.Equal(t, "part-time", EmploymentType("Part-time"))
	assert.Equal(t, "contract", EmploymentType("Contractor"))
	assert.Equal(t, "freelance", EmploymentType("Freelance"))
	assert.Equal(t, "full-time", EmploymentType(""))
}

func TestQualityScore(t *testing.T) {
	lo, hi, zero := 1000.0, 2000.0, 0.0

	full := &storage.HybridJob{
		SalaryMin:   &lo,
		SalaryMax:   &hi,
		CompanyName: "Acme",
		Description: strings.Repeat("x", 101),
		Skills:      []string{"go"},
	}
	assert.Equal(t, 100, QualityScore(full, true))
	assert.Equal(t, 95, QualityScore(full, false))

	bare := &storage.HybridJob{SalaryMin: &zero, SalaryMax: &hi, CompanyName: "AB", Description: strings.Repeat("x", 100)}
	assert.Equal(t, 50, QualityScore(bare, false))
}
