package sources

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/fetcher"
	"remotebalkan-scraper/internal/scraper"
)

const defaultListPath = "jobs"

// APIFetcher reads a JSON endpoint and maps each list item through
// mapping.fields.
type APIFetcher struct {
	*base
}

func (f *APIFetcher) Fetch(ctx context.Context, src config.Source) ([]scraper.RawJob, error) {
	resp, err := f.client.Fetch(ctx, src.URL, f.options(src, fetcher.AcceptJSON))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("invalid JSON from %s", src.URL)
	}

	items := listItems(gjson.ParseBytes(resp.Body), src.Mapping.ListPath)

	// remoteok puts a legal notice in front of the list
	if len(items) > 0 && items[0].IsObject() && items[0].Get("legal_url").Exists() {
		items = items[1:]
	}

	jobs := make([]scraper.RawJob, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}

		job := scraper.RawJob{}
		for ours, theirs := range src.Mapping.Fields {
			if v := item.Get(theirs); v.Exists() && v.Type != gjson.Null {
				job[ours] = v.Value()
			}
		}

		if _, ok := job["url"]; !ok {
			if id := job.String("external_id"); id != "" {
				job["url"] = fmt.Sprintf("%s/%s", src.URL, id)
			}
		}
		jobs = append(jobs, job)
	}

	f.logger.Debug("API items mapped", "source", src.ID, "items", len(items), "jobs", len(jobs))
	return jobs, nil
}

// listItems resolves list_path: "$" is the document root, anything else a
// gjson path. A root object is treated as a single item.
func listItems(data gjson.Result, path string) []gjson.Result {
	if path == "" {
		path = defaultListPath
	}
	if path == "$" {
		if data.IsArray() {
			return data.Array()
		}
		return []gjson.Result{data}
	}

	list := data.Get(path)
	if !list.IsArray() {
		return nil
	}
	return list.Array()
}
