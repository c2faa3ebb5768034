package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"orbit-tracker/internal/client"
	"orbit-tracker/internal/posting"
	"orbit-tracker/internal/reminders"
	"orbit-tracker/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	api := flag.String("api", envOr("ORBIT_API", client.DefaultBaseURL), "gateway base URL")
	theme := flag.String("theme", envOr("ORBIT_THEME", defaultTheme()), "colour or mono")
	home := flag.String("home", "", "directory for client data (default $ORBIT_HOME or ~/.orbit)")
	flag.Usage = func() { printHelp(os.Stderr) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printHelp(os.Stderr)
		os.Exit(2)
	}

	dir := *home
	if dir == "" {
		d, err := reminders.DefaultDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		dir = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		api:      client.New(*api),
		postings: posting.New(),
		home:     dir,
		theme:    ui.ThemeByName(*theme),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		now:      time.Now,
	}
	os.Exit(a.run(ctx, args))
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func defaultTheme() string {
	if os.Getenv("NO_COLOR") != "" {
		return "mono"
	}
	return "colour"
}
