package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/tagdeck/tagdeck/internal/config"
	"github.com/tagdeck/tagdeck/internal/profiles"
)

const serversUsage = `Usage: tagdeck servers <subcommand> [options]

Manage known metadata servers.

Subcommands:
  list                 List saved servers (default)
  add <name> <url>     Save a server
  rm <name>            Remove a saved server
  default <name>       Make a saved server the default
`

// runServers dispatches the servers subcommands.
func runServers(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runServersList(nil, stdout, stderr)
	}
	switch args[0] {
	case "list":
		return runServersList(args[1:], stdout, stderr)
	case "add":
		return runServersAdd(args[1:], stdout, stderr)
	case "rm", "remove":
		return runServersRemove(args[1:], stdout, stderr)
	case "default":
		return runServersDefault(args[1:], stdout, stderr)
	case "--help", "-h", "help":
		fmt.Fprint(stdout, serversUsage)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown servers subcommand: %s\n", args[0])
		fmt.Fprint(stderr, serversUsage)
		return 1
	}
}

// serversStore parses the shared flags and opens the profiles database.
func serversStore(name, usage string, args []string, stderr io.Writer) (*profiles.Store, *flag.FlagSet, int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to config file (default: ~/.tagdeck/config.toml)")

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, 0
		}
		return nil, nil, 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, nil, 1
	}

	store, err := openProfiles(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open profiles database: %v\n", err)
		return nil, nil, 1
	}
	return store, fs, -1
}

func runServersList(args []string, stdout, stderr io.Writer) int {
	store, _, code := serversStore("servers list",
		"Usage: tagdeck servers list [options]\n\nList saved servers.\n\nOptions:\n", args, stderr)
	if code >= 0 {
		return code
	}
	defer store.Close()

	list, err := store.List()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No saved servers. Add one with 'tagdeck servers add <name> <url>'.")
		return 0
	}

	star := color.New(color.FgGreen).Sprint("*")

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("", "NAME", "URL", "LAST USED")
	for _, p := range list {
		mark := ""
		if p.IsDefault {
			mark = star
		}
		table.AddRow(mark, p.Name, p.URL, p.LastUsed.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(stdout, table)
	return 0
}

func runServersAdd(args []string, stdout, stderr io.Writer) int {
	store, fs, code := serversStore("servers add",
		"Usage: tagdeck servers add [options] <name> <url>\n\nSave a server. The first one saved becomes the default.\n\nOptions:\n", args, stderr)
	if code >= 0 {
		return code
	}
	defer store.Close()

	if fs.NArg() < 2 {
		fmt.Fprintln(stderr, "Error: name and url are required")
		fs.Usage()
		return 1
	}
	name, rawURL := fs.Arg(0), fs.Arg(1)

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		fmt.Fprintf(stderr, "Error: %q is not a valid http(s) URL\n", rawURL)
		return 1
	}

	if err := store.Add(name, rawURL); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Saved server %q -> %s\n", name, rawURL)
	return 0
}

func runServersRemove(args []string, stdout, stderr io.Writer) int {
	store, fs, code := serversStore("servers rm",
		"Usage: tagdeck servers rm [options] <name>\n\nRemove a saved server.\n\nOptions:\n", args, stderr)
	if code >= 0 {
		return code
	}
	defer store.Close()

	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: name is required")
		fs.Usage()
		return 1
	}
	name := fs.Arg(0)

	if err := store.Remove(name); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Removed server %q\n", name)
	return 0
}

func runServersDefault(args []string, stdout, stderr io.Writer) int {
	store, fs, code := serversStore("servers default",
		"Usage: tagdeck servers default [options] <name>\n\nMake a saved server the default.\n\nOptions:\n", args, stderr)
	if code >= 0 {
		return code
	}
	defer store.Close()

	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: name is required")
		fs.Usage()
		return 1
	}
	name := fs.Arg(0)

	if err := store.SetDefault(name); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Default server is now %q\n", name)
	return 0
}
