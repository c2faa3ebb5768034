package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"orbit-tracker/internal/client"
	"orbit-tracker/internal/domain"
	"orbit-tracker/internal/posting"
	"orbit-tracker/internal/reminders"
	"orbit-tracker/internal/ui"
)

// gateway is the part of *client.Client the commands use.
type gateway interface {
	List(ctx context.Context) ([]domain.Application, error)
	Create(ctx context.Context, f domain.Fields) (domain.Application, error)
	Update(ctx context.Context, id string, f domain.Fields) (domain.Application, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type postingFetcher interface {
	Fetch(ctx context.Context, rawURL string) (posting.Posting, error)
}

var _ gateway = (*client.Client)(nil)

type app struct {
	api      gateway
	postings postingFetcher
	home     string
	theme    ui.Theme
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time
}

// run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		printHelp(a.stderr)
		return 2
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		printHelp(a.stdout)
		return 0
	case "ls":
		return a.relist(ctx)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "status":
		if len(rest) != 2 {
			return a.usage("orbit status <id> <status>")
		}
		return a.update(ctx, rest[0], func(f *domain.Fields) { f.Status = domain.Status(rest[1]) })
	case "rm":
		if len(rest) != 1 {
			return a.usage("orbit rm <id>")
		}
		return a.remove(ctx, rest[0])
	case "chart":
		apps, err := a.api.List(ctx)
		if err != nil {
			return a.fail("list", err)
		}
		fmt.Fprintln(a.stdout, ui.Chart(a.theme, apps))
		return 0
	case "remind":
		return a.remind(rest)
	}

	a.theme.Fail(a.stderr, "unknown subcommand: "+cmd)
	printHelp(a.stderr)
	return 2
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `orbit - track internship applications

Usage:
  orbit [-api URL] [-theme colour|mono] [-home DIR] <subcommand> [args]

Subcommands:
  ls                                   List applications, newest first
  add <company> <role> [-status S] [-notes N] [-from-url URL]
                                       Add an application
  edit <id> [-company C] [-role R] [-status S] [-notes N]
                                       Change an application
  status <id> <status>                 Set the status (Applied, Interviewing, Rejected, Offer)
  rm <id>                              Remove an application
  chart                                Show applications per status
  remind add <YYYY-MM-DD> <text...>    Add a local reminder
  remind ls                            List reminders
  remind done <n>                      Mark reminder n done
  remind rm <n>                        Remove reminder n

An <id> may be the short id shown by ls.
`)
}

func (a *app) usage(u string) int {
	a.theme.Fail(a.stderr, "usage: "+u)
	return 2
}

// fail prints err, with field details for validation errors, and returns 1.
func (a *app) fail(what string, err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "validation_error" && len(apiErr.Fields) > 0 {
		a.theme.Fail(a.stderr, what+": "+apiErr.Message)
		return 1
	}
	a.theme.Fail(a.stderr, what+": "+err.Error())
	return 1
}

// relist fetches the list again and renders it. Every mutation ends here so
// the screen always shows what the gateway holds.
func (a *app) relist(ctx context.Context) int {
	apps, err := a.api.List(ctx)
	if err != nil {
		return a.fail("list", err)
	}
	fmt.Fprintln(a.stdout, ui.Applications(a.theme, apps))
	return 0
}

func (a *app) add(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	status := fs.String("status", "", "initial status (default Applied)")
	notes := fs.String("notes", "", "free-form notes")
	fromURL := fs.String("from-url", "", "fill company and role from a job posting page")

	pos, err := parseInterspersed(fs, args)
	if err != nil || len(pos) > 2 {
		return a.usage("orbit add <company> <role> [-status S] [-notes N] [-from-url URL]")
	}

	f := domain.Fields{Status: domain.Status(*status), Notes: *notes}
	if *fromURL != "" {
		p, err := a.postings.Fetch(ctx, *fromURL)
		if err != nil {
			return a.fail("from-url", err)
		}
		f.Company, f.Role = p.Company, p.Role
		if f.Notes == "" {
			f.Notes = p.URL
		}
	}
	if len(pos) > 0 {
		f.Company = pos[0]
	}
	if len(pos) > 1 {
		f.Role = pos[1]
	}

	if strings.TrimSpace(f.Company) == "" || strings.TrimSpace(f.Role) == "" {
		a.theme.Fail(a.stderr, "company and role are required")
		return 1
	}

	app, err := a.api.Create(ctx, f)
	if err != nil {
		return a.fail("add", err)
	}
	a.theme.Ok(a.stdout, fmt.Sprintf("added %s at %s", app.Role, app.Company))
	return a.relist(ctx)
}

func (a *app) edit(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	company := fs.String("company", "", "new company")
	role := fs.String("role", "", "new role")
	status := fs.String("status", "", "new status")
	notes := fs.String("notes", "", "new notes")

	pos, err := parseInterspersed(fs, args)
	if err != nil || len(pos) != 1 {
		return a.usage("orbit edit <id> [-company C] [-role R] [-status S] [-notes N]")
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		a.theme.Fail(a.stderr, "edit: nothing to change")
		return 2
	}

	return a.update(ctx, pos[0], func(f *domain.Fields) {
		if set["company"] {
			f.Company = *company
		}
		if set["role"] {
			f.Role = *role
		}
		if set["status"] {
			f.Status = domain.Status(*status)
		}
		if set["notes"] {
			f.Notes = *notes
		}
	})
}

// update overlays change on the current record and sends a full update.
func (a *app) update(ctx context.Context, ref string, change func(*domain.Fields)) int {
	apps, err := a.api.List(ctx)
	if err != nil {
		return a.fail("list", err)
	}
	cur, err := resolve(apps, ref)
	if err != nil {
		a.theme.Fail(a.stderr, err.Error())
		return 1
	}

	f := cur.Fields()
	change(&f)
	if strings.TrimSpace(f.Company) == "" || strings.TrimSpace(f.Role) == "" {
		a.theme.Fail(a.stderr, "company and role are required")
		return 1
	}

	app, err := a.api.Update(ctx, cur.ID, f)
	if err != nil {
		return a.fail("update", err)
	}
	a.theme.Ok(a.stdout, fmt.Sprintf("updated %s at %s (%s)", app.Role, app.Company, app.Status))
	return a.relist(ctx)
}

func (a *app) remove(ctx context.Context, ref string) int {
	id := strings.TrimSpace(ref)
	apps, err := a.api.List(ctx)
	if err != nil {
		return a.fail("list", err)
	}
	if cur, err := resolve(apps, ref); err == nil {
		id = cur.ID
	} else if errors.Is(err, errAmbiguous) {
		a.theme.Fail(a.stderr, err.Error())
		return 1
	}

	deleted, err := a.api.Delete(ctx, id)
	if err != nil {
		return a.fail("rm", err)
	}
	if deleted {
		a.theme.Ok(a.stdout, "removed "+shortID(id))
	} else {
		a.theme.Ok(a.stdout, "nothing to remove for "+id)
	}
	return a.relist(ctx)
}

func (a *app) remind(args []string) int {
	if len(args) == 0 {
		return a.usage("orbit remind add|ls|done|rm")
	}
	st, err := reminders.Open(a.home)
	if err != nil {
		return a.fail("reminders", err)
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "ls":
	case "add":
		if len(rest) < 2 {
			return a.usage("orbit remind add <YYYY-MM-DD> <text...>")
		}
		r, err := st.Add(rest[0], strings.Join(rest[1:], " "))
		if err != nil {
			return a.fail("remind add", err)
		}
		a.theme.Ok(a.stdout, "reminder set for "+r.Date)
	case "done", "rm":
		if len(rest) != 1 {
			return a.usage("orbit remind " + cmd + " <n>")
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			a.theme.Fail(a.stderr, cmd+": not a number: "+rest[0])
			return 2
		}
		if cmd == "done" {
			_, err = st.SetDone(n, true)
		} else {
			_, err = st.Remove(n)
		}
		if err != nil {
			return a.fail("remind "+cmd, err)
		}
	default:
		return a.usage("orbit remind add|ls|done|rm")
	}

	items, err := st.List()
	if err != nil {
		return a.fail("reminders", err)
	}
	fmt.Fprintln(a.stdout, ui.Reminders(a.theme, items, a.now()))
	return 0
}

// parseInterspersed lets flags follow positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

var (
	errNoMatch   = errors.New("no application matches")
	errAmbiguous = errors.New("id prefix matches more than one application")
)

// resolve finds the record for a full id or a unique id prefix.
func resolve(apps []domain.Application, ref string) (domain.Application, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Application{}, fmt.Errorf("%w: empty id", errNoMatch)
	}
	var hits []domain.Application
	for _, a := range apps {
		if a.ID == ref {
			return a, nil
		}
		if strings.HasPrefix(a.ID, ref) {
			hits = append(hits, a)
		}
	}
	switch len(hits) {
	case 0:
		return domain.Application{}, fmt.Errorf("%w %q", errNoMatch, ref)
	case 1:
		return hits[0], nil
	default:
		return domain.Application{}, fmt.Errorf("%w: %q", errAmbiguous, ref)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
