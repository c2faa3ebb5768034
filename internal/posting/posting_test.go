package posting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit-tracker/internal/limiter"
)

func parse(t *testing.T, html, rawURL string) Posting {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return Extract(doc, u)
}

func TestExtract(t *testing.T) {
	cases := []struct {
		name, url, html string
		company, role   string
	}{
		{
			name:    "greenhouse markup",
			url:     "https://boards.greenhouse.io/acme/jobs/123",
			html:    `<html><head><title>Job Application for SWE Intern at Acme</title></head><body><h1 class="app-title"> Software Engineer  Intern </h1><span class="company-name">at Acme Corp</span></body></html>`,
			company: "Acme Corp",
			role:    "Software Engineer Intern",
		},
		{
			name:    "greenhouse title only",
			url:     "https://boards.greenhouse.io/acme/jobs/123",
			html:    `<html><head><title>Job Application for Data Intern at Acme</title></head><body></body></html>`,
			company: "Acme",
			role:    "Data Intern",
		},
		{
			name:    "lever",
			url:     "https://jobs.lever.co/globex/abc-def",
			html:    `<html><head><meta property="og:title" content="Globex - Platform Intern"></head><body><div class="posting-headline"><h2>Platform Intern</h2></div></body></html>`,
			company: "Globex",
			role:    "Platform Intern",
		},
		{
			name:    "opengraph site name",
			url:     "https://careers.initech.com/jobs/42",
			html:    `<html><head><meta property="og:title" content="Backend Intern"><meta property="og:site_name" content="Initech"></head></html>`,
			company: "Initech",
			role:    "Backend Intern",
		},
		{
			name:    "role at company title",
			url:     "https://example.com/p/1",
			html:    `<html><head><title>Research Intern at Umbrella | Careers</title></head></html>`,
			company: "Umbrella",
			role:    "Research Intern",
		},
		{
			name:    "lever slug fallback",
			url:     "https://jobs.lever.co/hooli/xyz",
			html:    `<html><body><h2>QA Intern</h2></body></html>`,
			company: "Hooli",
			role:    "QA Intern",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := parse(t, tc.html, tc.url)
			assert.Equal(t, tc.company, p.Company)
			assert.Equal(t, tc.role, p.Role)
		})
	}
}

func TestCompanyFromPath(t *testing.T) {
	assert.Equal(t, "Hooli xyz", companyFromPath("jobs.lever.co", "/hooli-xyz/123"))
	assert.Equal(t, "Éclair", companyFromPath("boards.greenhouse.io", "/éclair/jobs/1"))
	assert.Equal(t, "Ørsted", companyFromPath("jobs.lever.co", "/ørsted"))
	assert.True(t, utf8.ValidString(companyFromPath("jobs.lever.co", "/ñandu")))
	assert.Equal(t, "", companyFromPath("example.com", "/acme"))
	assert.Equal(t, "", companyFromPath("jobs.lever.co", "/"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Orbit/1.0 (+local)", r.Header.Get("User-Agent"))
		assert.Empty(t, r.URL.Query().Get("utm_source"))
		switch r.URL.Path {
		case "/job":
			_, _ = w.Write([]byte(`<html><head><title>Infra Intern at Acme</title></head></html>`))
		case "/blank":
			_, _ = w.Write([]byte(`<html><body><p>hello</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(WithHTTPClient(srv.Client()), WithLimiter(limiter.NewHostLimiter(1000, 10)))

	p, err := f.Fetch(context.Background(), srv.URL+"/job?utm_source=x#apply")
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Infra Intern", p.Role)
	assert.Equal(t, srv.URL+"/job", p.URL)

	_, err = f.Fetch(context.Background(), srv.URL+"/blank")
	assert.True(t, errors.Is(err, ErrNothingFound))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")

	_, err = f.Fetch(context.Background(), "mailto:jobs@acme.com")
	assert.ErrorContains(t, err, "not a web URL")
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t,
		"https://boards.greenhouse.io/acme/jobs/1?for=x",
		CanonicalURL(" HTTPS://Boards.Greenhouse.io/acme/jobs/1?gh_src=abc&for=x&utm_medium=y#app "))
}
