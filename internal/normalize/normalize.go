package normalize

import (
	"time"

	"remotebalkan-scraper/internal/checksum"
	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/scraper"
	"remotebalkan-scraper/internal/storage"
)

const (
	defaultTitle    = "Untitled Position"
	defaultCompany  = "Unknown Company"
	defaultCurrency = "EUR"
)

// Normalizer maps raw fetcher records onto the jobs and hybrid_jobs rows.
type Normalizer struct {
	ids   *checksum.Generator
	dates *scraper.DateParser
	now   func() time.Time
}

func NewNormalizer() *Normalizer {
	return NewNormalizerAt(time.Now)
}

// NewNormalizerAt pins the clock used for scraped_at and missing dates.
func NewNormalizerAt(now func() time.Time) *Normalizer {
	return &Normalizer{
		ids:   checksum.NewGenerator(),
		dates: scraper.NewDateParserAt(now),
		now:   now,
	}
}

// Normalize picks the remote shape for sources derived as REMOTE and the
// hybrid shape for everything else.
func (n *Normalizer) Normalize(src config.Source, raw scraper.RawJob) storage.Job {
	if src.RemoteType() == config.RemoteTypeRemote {
		return storage.Job{Remote: n.Remote(src, raw)}
	}
	return storage.Job{Hybrid: n.Hybrid(src, raw)}
}

// Remote builds a row for the jobs table.
func (n *Normalizer) Remote(src config.Source, raw scraper.RawJob) *storage.RemoteJob {
	title, company, url := n.identity(raw)
	salary := salaryOf(raw)

	remoteType := src.Derive.RemoteType
	if remoteType == "" {
		remoteType = config.RemoteTypeRemote
	}

	return &storage.RemoteJob{
		StableKey:      n.ids.JobID(src.ID, url, title, company),
		SourceID:       src.ID,
		SourceName:     src.DisplayName(),
		Title:          title,
		Company:        company,
		Location:       raw.String("location"),
		Remote:         true,
		RemoteType:     remoteType,
		PostedAt:       n.postedAt(raw),
		ApplyURL:       url,
		SalaryMin:      salary.Min,
		SalaryMax:      salary.Max,
		SalaryCurrency: salary.Currency,
		SalaryMinEUR:   salary.Min,
		SalaryMaxEUR:   salary.Max,
		Raw:            map[string]any(raw),
	}
}

// Hybrid builds a row for the hybrid_jobs table.
func (n *Normalizer) Hybrid(src config.Source, raw scraper.RawJob) *storage.HybridJob {
	title, company, url := n.identity(raw)
	location := raw.String("location")
	description := scraper.SanitizeHTML(raw.String("description"))
	salary := salaryOf(raw)

	remoteType := src.RemoteType()
	if remoteType == config.RemoteTypeUnknown {
		remoteType = DetectRemoteType(title + " " + description + " " + location)
	}

	tags := raw.Tags("tags")
	if tags == nil {
		tags = []string{}
	}

	level, levelKnown := ExperienceLevel(title)
	employment := raw.String("employment_type")
	if employment == "" {
		employment = title
	}

	var countryCode *string
	if src.Derive.CountryCode != "" {
		code := src.Derive.CountryCode
		countryCode = &code
	}

	job := &storage.HybridJob{
		Title:           title,
		Description:     description,
		CompanyName:     company,
		Location:        location,
		CountryCode:     countryCode,
		Region:          src.Region(),
		WorkType:        WorkType(remoteType),
		RemoteType:      remoteType,
		SalaryMin:       salary.Min,
		SalaryMax:       salary.Max,
		SalaryCurrency:  salary.Currency,
		ExperienceLevel: level,
		EmploymentType:  EmploymentType(employment),
		Skills:          tags,
		Technologies:    tags,
		ApplicationURL:  url,
		ExternalID:      n.ids.JobID(src.ID, url, title, company),
		SourceName:      src.ID,
		SourceWebsite:   src.EntryURL(),
		ScrapedAt:       n.now().UTC().Format(time.RFC3339),
		PostedDate:      n.postedAt(raw),
	}
	job.QualityScore = QualityScore(job, levelKnown)
	return job
}

// identity returns the fields hashed into the stable id, defaults applied.
func (n *Normalizer) identity(raw scraper.RawJob) (title, company, url string) {
	title = raw.String("title")
	if title == "" {
		title = defaultTitle
	}
	company = raw.String("company")
	if company == "" {
		company = defaultCompany
	}
	return title, company, raw.String("url")
}

func (n *Normalizer) postedAt(raw scraper.RawJob) string {
	if s := raw.String("posted_at"); s != "" {
		if t, err := n.dates.Parse(s); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return n.now().UTC().Format(time.RFC3339)
}

func salaryOf(raw scraper.RawJob) Salary {
	s := Salary{Currency: raw.String("salary_currency")}
	if v, ok := raw.Number("salary_min"); ok {
		s.Min = &v
	}
	if v, ok := raw.Number("salary_max"); ok {
		s.Max = &v
	}
	if s.Min == nil && s.Max == nil {
		if parsed, ok := ExtractSalary(raw.String("salary")); ok {
			return parsed
		}
	}
	if s.Currency == "" {
		s.Currency = defaultCurrency
	}
	return s
}
