package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tagdeck/tagdeck/internal/config"
	"github.com/tagdeck/tagdeck/internal/engine"
	"github.com/tagdeck/tagdeck/internal/history"
	"github.com/tagdeck/tagdeck/internal/session"
	"github.com/tagdeck/tagdeck/internal/tui"
)

// runBrowse implements `tagdeck browse`, the interactive editor. It is also
// the default command when tagdeck is started with no arguments.
func runBrowse(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	var folder string
	fs.StringVar(&folder, "folder", "", "Folder to open on start (default: config start_folder)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck browse [options]\n\nOpen the interactive metadata editor.\n\nOptions:\n")
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

	// The TUI owns the terminal, so logs go to a file for the duration.
	logFile, err := redirectLogs(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: could not open log file: %v\n", err)
	} else {
		defer logFile.Close()
	}

	// Seed a config file on first run so the next start needs no flags.
	if common.configPath == "" && cfg.Server == "" {
		if path, err := config.DefaultConfigPath(); err == nil {
			if err := config.WriteDefault(path, serverURL); err != nil {
				log.Printf("browse: could not write default config: %v", err)
			}
		}
	}

	if folder == "" {
		folder = cfg.StartFolder
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := session.NewStore()
	hist := history.NewStore()

	model := tui.New(ctx, nil)
	eng := engine.New(client, sess, hist, model.Hooks(), engine.Options{
		RenameSettleDelay: cfg.RenameSettleDelay(),
	})
	model.SetEngine(eng)
	if folder != "" {
		model.SetStartFolder(folder)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// redirectLogs points the standard logger at the configured log file so TUI
// output stays clean. The caller closes the returned file after the program
// exits.
func redirectLogs(cfg *config.Config) (*os.File, error) {
	path := cfg.LogFile
	if path == "" {
		var err error
		path, err = config.DefaultLogPath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f, nil
}
