package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uitable"

	"github.com/tagdeck/tagdeck/internal/config"
	"github.com/tagdeck/tagdeck/internal/discovery"
)

// runDiscover implements `tagdeck discover`: browse the local network for
// metadata servers over mDNS and optionally save one as a profile.
func runDiscover(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath string
	var service string
	var timeout time.Duration
	var save string
	fs.StringVar(&configPath, "config", "", "Path to config file (default: ~/.tagdeck/config.toml)")
	fs.StringVar(&service, "service", "", "DNS-SD service type (default: _metaremote._tcp)")
	fs.DurationVar(&timeout, "timeout", 5*time.Second, "How long to browse before reporting")
	fs.StringVar(&save, "save", "", "Save the first server found as a profile with this name")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck discover [options]\n\nBrowse the local network for metadata servers.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if service == "" {
		service = cfg.ServiceName()
	}

	fmt.Fprintf(stdout, "Browsing for %s servers (%s)...\n", service, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	servers, err := discovery.Browse(ctx, service)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if len(servers) == 0 {
		fmt.Fprintln(stdout, "No servers found.")
		return 0
	}

	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("NAME", "URL", "VERSION")
	for _, s := range servers {
		table.AddRow(s.Name, s.URL(), s.Version)
	}
	fmt.Fprintln(stdout, table)

	if save != "" {
		store, err := openProfiles(cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Error: failed to open profiles database: %v\n", err)
			return 1
		}
		defer store.Close()

		first := servers[0]
		if err := store.Add(save, first.URL()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Saved %q -> %s\n", save, first.URL())
	}

	return 0
}
