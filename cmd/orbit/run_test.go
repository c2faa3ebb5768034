package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit-tracker/internal/client"
	"orbit-tracker/internal/domain"
	"orbit-tracker/internal/httpapi"
	"orbit-tracker/internal/posting"
	"orbit-tracker/internal/store"
	"orbit-tracker/internal/tracker"
	"orbit-tracker/internal/ui"
)

type fakePostings struct {
	p   posting.Posting
	err error
}

func (f fakePostings) Fetch(context.Context, string) (posting.Posting, error) { return f.p, f.err }

type harness struct {
	app    *app
	out    *bytes.Buffer
	errOut *bytes.Buffer
	api    *client.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.MigrateSQLite(context.Background(), db))

	d := httpapi.Deps{Service: tracker.New(store.NewSQLStore(db, store.SQLite))}
	srv := httptest.NewServer(httpapi.Chain(httpapi.NewMux(d), httpapi.RequestID))
	t.Cleanup(srv.Close)

	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, api: client.New(srv.URL)}
	h.app = &app{
		api:      h.api,
		postings: fakePostings{err: errors.New("no network in tests")},
		home:     t.TempDir(),
		theme:    ui.Mono(),
		stdout:   h.out,
		stderr:   h.errOut,
		now:      func() time.Time { return time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC) },
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.errOut.Reset()
	return h.app.run(context.Background(), args)
}

func (h *harness) list(t *testing.T) []domain.Application {
	apps, err := h.api.List(context.Background())
	require.NoError(t, err)
	return apps
}

func TestAddListsAfterwards(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("add", "Acme", "SWE Intern", "-notes", "referral"), h.errOut.String())
	assert.Contains(t, h.out.String(), "added SWE Intern at Acme")
	assert.Contains(t, h.out.String(), "COMPANY", "the list is re-rendered")
	assert.Contains(t, h.out.String(), "referral")

	require.Equal(t, 0, h.run("add", "-status", "interviewing", "Globex", "Data Intern"), h.errOut.String())

	apps := h.list(t)
	require.Len(t, apps, 2)
	assert.Equal(t, "Globex", apps[0].Company)
	assert.Equal(t, domain.StatusInterviewing, apps[0].Status)
}

func TestAddRequiresCompanyAndRole(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("add", "Acme"))
	assert.Contains(t, h.errOut.String(), "company and role are required")
	assert.Equal(t, 1, h.run("add", " ", "SWE Intern"))
	assert.Empty(t, h.list(t), "nothing is sent when the client check fails")

	assert.Equal(t, 2, h.run("add", "a", "b", "c"))
}

func TestAddSurfacesGatewayValidation(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("add", "Acme", "SWE Intern", "-status", "Ghosted"))
	assert.Contains(t, h.errOut.String(), "status must be one of")
	assert.Empty(t, h.list(t))
}

func TestAddFromURL(t *testing.T) {
	h := newHarness(t)
	h.app.postings = fakePostings{p: posting.Posting{Company: "Initech", Role: "Backend Intern", URL: "https://careers.initech.com/42"}}

	require.Equal(t, 0, h.run("add", "-from-url", "https://careers.initech.com/42"), h.errOut.String())
	apps := h.list(t)
	require.Len(t, apps, 1)
	assert.Equal(t, "Initech", apps[0].Company)
	assert.Equal(t, "Backend Intern", apps[0].Role)
	assert.Equal(t, "https://careers.initech.com/42", apps[0].Notes)

	// Positional arguments override what the page said.
	require.Equal(t, 0, h.run("add", "Initrode", "-from-url", "https://careers.initech.com/42"), h.errOut.String())
	assert.Equal(t, "Initrode", h.list(t)[0].Company)

	h.app.postings = fakePostings{err: posting.ErrNothingFound}
	assert.Equal(t, 1, h.run("add", "-from-url", "https://example.com"))
	assert.Contains(t, h.errOut.String(), "from-url")
}

func TestEditStatusAndRemoveByShortID(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Acme", "SWE Intern"))
	id := h.list(t)[0].ID
	short := id[:8]

	require.Equal(t, 0, h.run("status", short, "Offer"), h.errOut.String())
	assert.Contains(t, h.out.String(), "(Offer)")

	require.Equal(t, 0, h.run("edit", short, "-notes", "signed!", "-role", "SWE Intern (Summer)"), h.errOut.String())
	app := h.list(t)[0]
	assert.Equal(t, id, app.ID)
	assert.Equal(t, "Acme", app.Company, "untouched fields are sent back as they were")
	assert.Equal(t, "SWE Intern (Summer)", app.Role)
	assert.Equal(t, domain.StatusOffer, app.Status)
	assert.Equal(t, "signed!", app.Notes)

	assert.Equal(t, 2, h.run("edit", short))
	assert.Equal(t, 1, h.run("edit", short, "-company", ""))
	assert.Equal(t, 1, h.run("status", "zzzz", "Offer"))
	assert.Contains(t, h.errOut.String(), "no application matches")

	require.Equal(t, 0, h.run("rm", short), h.errOut.String())
	assert.Contains(t, h.out.String(), "removed "+short)
	assert.Empty(t, h.list(t))

	require.Equal(t, 0, h.run("rm", id))
	assert.Contains(t, h.out.String(), "nothing to remove")
}

func TestChart(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Acme", "SWE Intern"))
	require.Equal(t, 0, h.run("add", "Globex", "Data Intern", "-status", "Offer"))

	require.Equal(t, 0, h.run("chart"))
	assert.Contains(t, h.out.String(), "(2 total)")
	assert.Contains(t, h.out.String(), "50.0%")
}

func TestGatewayDownIsReported(t *testing.T) {
	h := newHarness(t)
	h.app.api = client.New("http://127.0.0.1:1")

	assert.Equal(t, 1, h.run("ls"))
	assert.Contains(t, h.errOut.String(), "list:")
}

func TestRemind(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("remind", "add", "2026-04-12", "Acme", "onsite"), h.errOut.String())
	require.Equal(t, 0, h.run("remind", "add", "2026-04-01", "thank-you", "note"))
	assert.Contains(t, h.out.String(), " 1. ☐ 2026-04-01  thank-you note  (overdue)")
	assert.Contains(t, h.out.String(), " 2. ☐ 2026-04-12  Acme onsite")

	require.Equal(t, 0, h.run("remind", "done", "1"))
	assert.Contains(t, h.out.String(), " 1. ☑ 2026-04-01")

	require.Equal(t, 0, h.run("remind", "rm", "1"))
	require.Equal(t, 0, h.run("remind", "ls"))
	assert.Equal(t, 1, strings.Count(h.out.String(), "\n"))

	assert.Equal(t, 1, h.run("remind", "add", "April 1", "x"))
	assert.Equal(t, 1, h.run("remind", "done", "9"))
	assert.Equal(t, 2, h.run("remind", "done", "one"))
	assert.Equal(t, 2, h.run("remind", "snooze"))

	assert.Empty(t, h.list(t), "reminders never reach the gateway")
}

func TestUnknownSubcommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Contains(t, h.errOut.String(), "unknown subcommand")
	assert.Equal(t, 0, h.run("help"))
	assert.Contains(t, h.out.String(), "remind add")
}

func TestResolve(t *testing.T) {
	apps := []domain.Application{{ID: "abc123"}, {ID: "abd456"}, {ID: "abc"}}

	a, err := resolve(apps, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", a.ID, "exact match wins over prefix")

	a, err = resolve(apps, "abd")
	require.NoError(t, err)
	assert.Equal(t, "abd456", a.ID)

	_, err = resolve(apps, "ab")
	assert.ErrorIs(t, err, errAmbiguous)
	_, err = resolve(apps, "x")
	assert.ErrorIs(t, err, errNoMatch)
}
