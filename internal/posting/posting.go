// Package posting pre-fills a new application from a job posting page.
package posting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"orbit-tracker/internal/limiter"
)

// Posting is what could be read off a page. Either field may be empty.
type Posting struct {
	Company string
	Role    string
	URL     string
}

var ErrNothingFound = errors.New("no company or role found on the page")

type Fetcher struct {
	hc      *http.Client
	limiter *limiter.HostLimiter
	ua      string
}

type Option func(*Fetcher)

func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		if hc != nil {
			f.hc = hc
		}
	}
}

func WithLimiter(l *limiter.HostLimiter) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.limiter = l
		}
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter.NewHostLimiter(1.0, 2),
		ua:      "Orbit/1.0 (+local)",
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads rawURL and extracts the company and role.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Posting, error) {
	u, err := url.Parse(CanonicalURL(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Posting{}, fmt.Errorf("not a web URL: %q", rawURL)
	}

	if err := f.limiter.WaitURL(ctx, u.String()); err != nil {
		return Posting{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Posting{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.hc.Do(req)
	if err != nil {
		return Posting{}, fmt.Errorf("get posting: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return Posting{}, fmt.Errorf("posting page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return Posting{}, fmt.Errorf("parse posting html: %w", err)
	}

	p := Extract(doc, res.Request.URL)
	if p.Company == "" && p.Role == "" {
		return p, ErrNothingFound
	}
	return p, nil
}

var (
	// "Job Application for Software Engineer Intern at Acme"
	greenhouseTitle = regexp.MustCompile(`(?i)^job application for (.+) at (.+)$`)
	// "Software Engineer Intern at Acme"
	atTitle = regexp.MustCompile(`(?i)^(.+?) at ([^|–-]+)`)
)

// Extract reads a posting from a parsed page. Board-specific markup wins,
// then OpenGraph tags, then the <title>.
func Extract(doc *goquery.Document, pageURL *url.URL) Posting {
	p := Posting{}
	if pageURL != nil {
		p.URL = pageURL.String()
	}
	host := ""
	if pageURL != nil {
		host = strings.ToLower(pageURL.Host)
	}

	switch {
	case strings.Contains(host, "greenhouse.io"):
		p.Role = CleanText(doc.Find("h1.app-title, .job__title h1, h1").First().Text())
		p.Company = strings.TrimPrefix(CleanText(doc.Find(".company-name").First().Text()), "at ")
	case strings.Contains(host, "lever.co"):
		p.Role = CleanText(doc.Find(".posting-headline h2, h2").First().Text())
	}

	ogTitle := meta(doc, "og:title")
	siteName := meta(doc, "og:site_name")
	title := CleanText(doc.Find("title").First().Text())

	for _, t := range []string{ogTitle, title} {
		if t == "" || (p.Role != "" && p.Company != "") {
			continue
		}
		role, company := splitTitle(t)
		if p.Role == "" {
			p.Role = role
		}
		if p.Company == "" {
			p.Company = company
		}
	}

	if p.Company == "" && siteName != "" {
		p.Company = siteName
	}
	if p.Company == "" && pageURL != nil {
		p.Company = companyFromPath(host, pageURL.Path)
	}
	if p.Role == "" {
		p.Role = ogTitle
	}
	return p
}

// splitTitle understands the common "<role> at <company>" and
// "<company> - <role>" shapes.
func splitTitle(t string) (role, company string) {
	if m := greenhouseTitle.FindStringSubmatch(t); m != nil {
		return CleanText(m[1]), CleanText(m[2])
	}
	if m := atTitle.FindStringSubmatch(t); m != nil {
		return CleanText(m[1]), CleanText(m[2])
	}
	for _, sep := range []string{" | ", " – ", " - "} {
		if i := strings.Index(t, sep); i > 0 {
			// Lever titles are "<company> - <role>".
			return CleanText(t[i+len(sep):]), CleanText(t[:i])
		}
	}
	return "", ""
}

// companyFromPath reads the board slug of hosted boards, e.g.
// jobs.lever.co/acme/... or boards.greenhouse.io/acme/jobs/1.
func companyFromPath(host, path string) string {
	if !strings.Contains(host, "lever.co") && !strings.Contains(host, "greenhouse.io") {
		return ""
	}
	seg := strings.Split(strings.Trim(path, "/"), "/")[0]
	if seg == "" {
		return ""
	}
	seg = strings.ReplaceAll(seg, "-", " ")
	r, n := utf8.DecodeRuneInString(seg)
	return string(unicode.ToUpper(r)) + seg[n:]
}

func meta(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, property, property)).First()
	v, _ := sel.Attr("content")
	return CleanText(v)
}

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalURL drops the fragment and tracking parameters.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" || lk == "gh_src" || lk == "lever-source" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
