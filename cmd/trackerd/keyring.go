package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strings"

	"orbit-tracker/internal/secrets"
)

const keyringUsage = `usage:
  trackerd keyring set-supabase-key [-url URL]   read the key from stdin
  trackerd keyring delete-supabase-key [-url URL]`

// runKeyring manages the Supabase API key in the OS keychain. The project
// URL defaults to the configured store.supabase.url.
func runKeyring(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, keyringUsage)
		return 2
	}

	fs := flag.NewFlagSet("keyring "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectURL := fs.String("url", "", "Supabase project URL")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	if *projectURL == "" {
		_, load, err := loadConfig(dataDir())
		if err == nil {
			if cfg, err := load(); err == nil {
				*projectURL = cfg.Store.Supabase.URL
			}
		}
	}
	if *projectURL == "" {
		fmt.Fprintln(stderr, "keyring: no Supabase URL (pass -url or set store.supabase.url)")
		return 1
	}

	switch args[0] {
	case "set-supabase-key":
		sc := bufio.NewScanner(stdin)
		sc.Buffer(make([]byte, 0, 4096), 64<<10)
		if !sc.Scan() {
			fmt.Fprintln(stderr, "keyring: no key on stdin")
			return 1
		}
		if err := secrets.SetSupabaseKey(*projectURL, strings.TrimSpace(sc.Text())); err != nil {
			fmt.Fprintln(stderr, "keyring:", err)
			return 1
		}
		fmt.Fprintf(stdout, "stored key for %s\n", secrets.SupabaseKeyringAccount(*projectURL))
		return 0

	case "delete-supabase-key":
		if err := secrets.DeleteSupabaseKey(*projectURL); err != nil {
			fmt.Fprintln(stderr, "keyring:", err)
			return 1
		}
		fmt.Fprintf(stdout, "deleted key for %s\n", secrets.SupabaseKeyringAccount(*projectURL))
		return 0

	default:
		fmt.Fprintln(stderr, keyringUsage)
		return 2
	}
}
