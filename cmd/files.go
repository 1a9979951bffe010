package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uitable"
)

// runFiles implements `tagdeck files [folder]`: a one-shot listing of the
// audio files under a folder, subfolders included.
func runFiles(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("files", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck files [options] [folder]\n\nList the audio files under a folder (library root when omitted).\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, serverURL, err := common.resolve(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	client, err := newClient(cfg, serverURL)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	folder := fs.Arg(0)
	if folder == "" {
		folder = cfg.StartFolder
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	files, err := client.ListFiles(ctx, folder)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if len(files) == 0 {
		fmt.Fprintln(stdout, "No files found.")
		return 0
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("NAME", "FOLDER", "SIZE", "MODIFIED")
	for _, f := range files {
		table.AddRow(f.Name, f.Folder, formatSize(f.Size), time.Unix(f.Date, 0).Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(stdout, table)
	fmt.Fprintf(stdout, "\n%d file(s)\n", len(files))
	return 0
}

// formatSize renders a byte count with a binary unit suffix.
func formatSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
