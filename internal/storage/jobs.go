package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RemoteJob is a row of the jobs table.
type RemoteJob struct {
	StableKey      string         `json:"stable_key"`
	SourceID       string         `json:"source_id"`
	SourceName     string         `json:"source_name"`
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	Location       string         `json:"location"`
	Remote         bool           `json:"remote"`
	RemoteType     string         `json:"remote_type"`
	PostedAt       string         `json:"posted_at"`
	ApplyURL       string         `json:"apply_url"`
	SalaryMin      *float64       `json:"salary_min"`
	SalaryMax      *float64       `json:"salary_max"`
	SalaryCurrency string         `json:"salary_currency"`
	SalaryMinEUR   *float64       `json:"salary_min_eur"`
	SalaryMaxEUR   *float64       `json:"salary_max_eur"`
	Raw            map[string]any `json:"raw"`
}

// HybridJob is a row of the hybrid_jobs table.
type HybridJob struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	CompanyName     string   `json:"company_name"`
	Location        string   `json:"location"`
	CountryCode     *string  `json:"country_code"`
	Region          string   `json:"region"`
	WorkType        string   `json:"work_type"`
	RemoteType      string   `json:"remote_type"`
	SalaryMin       *float64 `json:"salary_min"`
	SalaryMax       *float64 `json:"salary_max"`
	SalaryCurrency  string   `json:"salary_currency"`
	ExperienceLevel string   `json:"experience_level"`
	EmploymentType  string   `json:"employment_type"`
	Skills          []string `json:"skills"`
	Technologies    []string `json:"technologies"`
	ApplicationURL  string   `json:"application_url"`
	ExternalID      string   `json:"external_id"`
	SourceName      string   `json:"source_name"`
	SourceWebsite   string   `json:"source_website"`
	ScrapedAt       string   `json:"scraped_at"`
	PostedDate      string   `json:"posted_date"`
	QualityScore    int      `json:"quality_score"`
}

// Job holds exactly one of the two shapes.
type Job struct {
	Remote *RemoteJob
	Hybrid *HybridJob
}

// ID is the stable identifier used for de-duplication.
func (j Job) ID() string {
	switch {
	case j.Remote != nil:
		return j.Remote.StableKey
	case j.Hybrid != nil:
		return j.Hybrid.ExternalID
	}
	return ""
}

func (j Job) RemoteType() string {
	switch {
	case j.Remote != nil:
		return j.Remote.RemoteType
	case j.Hybrid != nil:
		return j.Hybrid.RemoteType
	}
	return ""
}

func (j Job) Title() string {
	switch {
	case j.Remote != nil:
		return j.Remote.Title
	case j.Hybrid != nil:
		return j.Hybrid.Title
	}
	return ""
}

func (j Job) Table() Table {
	if j.Remote != nil {
		return RemoteTable
	}
	return HybridTable
}

func (j Job) MarshalJSON() ([]byte, error) {
	var v any
	switch {
	case j.Remote != nil:
		v = j.Remote
	case j.Hybrid != nil:
		v = j.Hybrid
	default:
		return nil, fmt.Errorf("empty job")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Record converts the job to the generic row used by the loader.
func (j Job) Record() (Record, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}
