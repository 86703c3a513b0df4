package scraper

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// ErrInvalidNextData is returned when the __NEXT_DATA__ script is not JSON.
var ErrInvalidNextData = errors.New("invalid __NEXT_DATA__ JSON")

// NextData returns the parsed __NEXT_DATA__ payload of a Next.js page.
// ok is false when the page has no such script.
func NextData(doc *goquery.Document) (data gjson.Result, ok bool, err error) {
	body := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if body == "" {
		return gjson.Result{}, false, nil
	}
	if !gjson.Valid(body) {
		return gjson.Result{}, false, ErrInvalidNextData
	}
	return gjson.Parse(body), true, nil
}

// ApolloJobs maps Apollo cache entries whose key starts with prefix.
// mapping is ours -> theirs; entries without a title are dropped.
func ApolloJobs(data gjson.Result, prefix string, mapping map[string]string) []RawJob {
	state := data.Get("props.pageProps.__APOLLO_STATE__")
	if !state.IsObject() {
		return nil
	}

	var jobs []RawJob
	state.ForEach(func(key, value gjson.Result) bool {
		if !strings.HasPrefix(key.String(), prefix) || !value.IsObject() {
			return true
		}

		fields := make(map[string]gjson.Result)
		value.ForEach(func(k, v gjson.Result) bool {
			fields[k.String()] = v
			return true
		})

		job := RawJob{}
		for ours, theirs := range mapping {
			if v, ok := fields[theirs]; ok && v.Type != gjson.Null {
				job[ours] = v.Value()
			}
		}
		if job.String("title") != "" {
			jobs = append(jobs, job)
		}
		return true
	})

	return jobs
}
