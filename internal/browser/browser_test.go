package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/observability"
)

type fakeRenderer struct {
	pages map[string]string
	calls []string
}

func (f *fakeRenderer) Render(ctx context.Context, url, waitSelector string) (string, error) {
	f.calls = append(f.calls, url+" "+waitSelector)
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("navigation failed")
	}
	return html, nil
}

func site(t *testing.T, id string) Site {
	t.Helper()
	sites, err := Lookup([]string{id})
	require.NoError(t, err)
	require.Len(t, sites, 1)
	return sites[0]
}

const remoteOKPage = `<table>
<tr class="job" data-id="1001"><td><h2> Senior Go Engineer </h2><h3 class="company">Acme</h3>
  <div class="location">🌏 Worldwide</div><div class="tag">go</div><div class="tag">k8s</div></td></tr>
<tr class="job" data-id="1002"><td><h2>Data Engineer</h2></td></tr>
<tr class="job" data-id="1003"><td><span>no title</span></td></tr>
<tr class="job"><td><h2>No id</h2></td></tr>
</table>`

func TestExtractCardsRemoteOK(t *testing.T) {
	jobs, err := ExtractCards(remoteOKPage, site(t, "remoteok"), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "Senior Go Engineer", jobs[0]["title"])
	assert.Equal(t, "Acme", jobs[0]["company"])
	assert.Equal(t, "🌏 Worldwide", jobs[0]["location"])
	assert.Equal(t, "https://remoteok.com/remote-jobs/1001", jobs[0]["url"])
	assert.Equal(t, []string{"go", "k8s"}, jobs[0]["tags"])

	assert.Equal(t, "Unknown Company", jobs[1]["company"])
	assert.Equal(t, "Remote", jobs[1]["location"])
	assert.Equal(t, "Data Engineer at Unknown Company", jobs[1]["description"])
	assert.NotContains(t, jobs[1], "tags")
}

func TestExtractCardsLimitAndRelativeLinks(t *testing.T) {
	page := `<div class="job-list-item"><a href="/posao/1"><span class="job-title">Programer</span></a>
		<span class="company-name">Nordeus</span><span class="salary">150.000 - 200.000 RSD</span></div>
		<div class="job-list-item"><a href="/posao/2"><span class="job-title">Tester</span></a></div>
		<div class="job-list-item"><span class="job-title">No link</span></div>`

	jobs, err := ExtractCards(page, site(t, "infostud"), 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://www.poslovi.infostud.com/posao/1", jobs[0]["url"])
	assert.Equal(t, "Beograd, Srbija", jobs[0]["location"])
	assert.Equal(t, "150.000 - 200.000 RSD", jobs[0]["salary"])

	jobs, err = ExtractCards(page, site(t, "infostud"), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestScrapeAllContinuesAfterFailure(t *testing.T) {
	ok := site(t, "remoteok")
	broken := site(t, "remotive")
	renderer := &fakeRenderer{pages: map[string]string{ok.StartURL: remoteOKPage}}

	s := NewScraper(renderer, 1, observability.NewNop())
	results := s.ScrapeAll(context.Background(), []Site{broken, ok})

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Len(t, results[1].Jobs, 1)
	assert.Equal(t, []string{broken.StartURL + " .job-tile", ok.StartURL + " tr.job"}, renderer.calls)
}

func TestScrapeAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScraper(&fakeRenderer{}, 10, observability.NewNop())
	assert.Empty(t, s.ScrapeAll(ctx, Sites))
}

func TestLookup(t *testing.T) {
	all, err := Lookup(nil)
	require.NoError(t, err)
	assert.Len(t, all, 9)

	sites, err := Lookup([]string{"halooglasi", " remoteok "})
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "remoteok", sites[0].ID)
	assert.Equal(t, "halooglasi", sites[1].ID)

	_, err = Lookup([]string{"monster"})
	assert.Error(t, err)
}

func TestSiteSource(t *testing.T) {
	src := site(t, "halooglasi").Source()
	assert.Equal(t, "halooglasi", src.ID)
	assert.Equal(t, config.RemoteTypeHybrid, src.RemoteType())
	assert.Equal(t, "BALKAN", src.Region())
	assert.Equal(t, "RS", src.Derive.CountryCode)
	assert.Equal(t, "https://www.halooglasi.rs/poslovi", src.EntryURL())
}
