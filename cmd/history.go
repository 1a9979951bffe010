package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/tagdeck/tagdeck/internal/api"
)

const historyUsage = `Usage: tagdeck history <subcommand> [options]

Work with the server's edit history.

Subcommands:
  list          Show the edit history (default)
  show <id>     Show one action in detail
  undo <id>     Undo an action
  redo <id>     Redo a previously undone action
  clear         Clear the entire edit history
`

// runHistory dispatches the history subcommands.
func runHistory(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runHistoryList(nil, stdout, stderr)
	}
	switch args[0] {
	case "list":
		return runHistoryList(args[1:], stdout, stderr)
	case "show":
		return runHistoryShow(args[1:], stdout, stderr)
	case "undo":
		return runHistoryReversal(args[1:], stdout, stderr, false)
	case "redo":
		return runHistoryReversal(args[1:], stdout, stderr, true)
	case "clear":
		return runHistoryClear(args[1:], stdout, stderr)
	case "--help", "-h", "help":
		fmt.Fprint(stdout, historyUsage)
		return 0
	default:
		// Bare flags go to list, anything else is an unknown subcommand.
		if len(args[0]) > 0 && args[0][0] == '-' {
			return runHistoryList(args, stdout, stderr)
		}
		fmt.Fprintf(stderr, "Unknown history subcommand: %s\n", args[0])
		fmt.Fprint(stderr, historyUsage)
		return 1
	}
}

func runHistoryList(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history list", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	var limit int
	fs.IntVar(&limit, "n", 0, "Show at most n actions (0 = all)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck history list [options]\n\nShow the edit history, newest first.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	actions, err := client.History(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(actions) == 0 {
		fmt.Fprintln(stdout, "History is empty.")
		return 0
	}
	if limit > 0 && len(actions) > limit {
		actions = actions[:limit]
	}

	undone := color.New(color.Faint).SprintFunc()

	table := uitable.New()
	table.MaxColWidth = 70
	table.AddRow("ID", "WHEN", "TYPE", "FILES", "DESCRIPTION")
	for _, a := range actions {
		desc := a.Description
		if desc == "" {
			desc = a.Type
		}
		when := a.Time().Format("2006-01-02 15:04:05")
		if a.IsUndone {
			table.AddRow(undone(a.ID), undone(when), undone(a.Type), undone(fmt.Sprint(a.FileCount)), undone(desc+" (undone)"))
		} else {
			table.AddRow(a.ID, when, a.Type, fmt.Sprint(a.FileCount), desc)
		}
	}
	fmt.Fprintln(stdout, table)
	return 0
}

func runHistoryShow(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history show", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck history show [options] <id>\n\nShow one action in detail.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: action id is required")
		fs.Usage()
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	detail, err := client.HistoryDetail(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(stdout, "%s %s\n", bold("Action:"), detail.ID)
	fmt.Fprintf(stdout, "%s %s\n", bold("Type:"), detail.Type)
	fmt.Fprintf(stdout, "%s %s\n", bold("When:"), detail.Time().Format(time.RFC1123))
	if detail.Description != "" {
		fmt.Fprintf(stdout, "%s %s\n", bold("Description:"), detail.Description)
	}
	fmt.Fprintf(stdout, "%s %d\n", bold("Files:"), detail.FileCount)
	if detail.IsUndone {
		fmt.Fprintf(stdout, "%s yes\n", bold("Undone:"))
	}
	if detail.OldName != "" || detail.NewName != "" {
		fmt.Fprintf(stdout, "%s %s -> %s\n", bold("Rename:"), detail.OldName, detail.NewName)
	}
	if detail.HasOldArt || detail.HasNewArt {
		fmt.Fprintf(stdout, "%s had art: %v, has art: %v\n", bold("Art:"), detail.HasOldArt, detail.HasNewArt)
	}
	for _, ch := range detail.Changes {
		fmt.Fprintf(stdout, "  %s: %q -> %q\n", ch.File, ch.OldValue, ch.NewValue)
	}
	if detail.MoreFiles > 0 {
		fmt.Fprintf(stdout, "  ... and %d more file(s)\n", detail.MoreFiles)
	}
	return 0
}

func runHistoryReversal(args []string, stdout, stderr io.Writer, redo bool) int {
	name, verb := "history undo", "Undo"
	if redo {
		name, verb = "history redo", "Redo"
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck %s [options] <id>\n\n%s an action.\n\nOptions:\n", name, verb)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: action id is required")
		fs.Usage()
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	var res *api.UndoRedoResult
	var err error
	if redo {
		res, err = client.Redo(ctx, fs.Arg(0))
	} else {
		res, err = client.Undo(ctx, fs.Arg(0))
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return printReversalResult(stdout, stderr, verb, res)
}

// printReversalResult renders an undo/redo outcome. Partial completion is
// reported as success with the skip count alongside.
func printReversalResult(stdout, stderr io.Writer, verb string, res *api.UndoRedoResult) int {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	switch res.Status {
	case api.StatusSuccess, api.StatusPartial:
		line := fmt.Sprintf("%s: %d file(s) updated", verb, res.FilesUpdated)
		if skipped := res.Skipped(); skipped > 0 {
			line += fmt.Sprintf(", %d skipped", skipped)
		}
		fmt.Fprintln(stdout, green(line))
		for _, e := range res.Errors {
			fmt.Fprintf(stdout, "  skipped: %s\n", e)
		}
		return 0
	default:
		msg := res.Err
		if msg == "" {
			msg = res.Message
		}
		if msg == "" {
			msg = "the server reported an error"
		}
		fmt.Fprintf(stderr, "%s\n", red(fmt.Sprintf("%s failed: %s", verb, msg)))
		return 1
	}
}

func runHistoryClear(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history clear", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	var yes bool
	fs.BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck history clear [options]\n\nClear the entire edit history. This cannot be undone.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if !yes {
		fmt.Fprintln(stderr, "Error: clearing history cannot be undone; re-run with --yes to confirm")
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	if err := client.ClearHistory(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "History cleared.")
	return 0
}

// apiClient resolves config and builds the client plus a per-command
// context. Returns a non-zero code (with the error already printed) on
// failure.
func apiClient(common *commonFlags, stderr io.Writer) (*api.Client, context.Context, context.CancelFunc, int) {
	cfg, serverURL, err := common.resolve(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, nil, nil, 1
	}
	client, err := newClient(cfg, serverURL)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, nil, nil, 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	return client, ctx, cancel, 0
}
