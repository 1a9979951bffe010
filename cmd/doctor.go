package main

// The doctor command runs preflight checks against the client environment and
// the configured server, with remediation guidance for anything that is off.
// Supports human-readable (default) and machine-readable (--json) output.

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/tagdeck/tagdeck/internal/config"
	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// DoctorResult is the top-level JSON output for `tagdeck doctor --json`.
type DoctorResult struct {
	// Version is the doctor output schema version. Always "1".
	Version string `json:"version"`

	// Checks is the ordered list of diagnostic checks that were evaluated.
	Checks []DoctorCheck `json:"checks"`

	// Summary contains aggregate pass/warn/fail counts derived from Checks.
	Summary DoctorSummary `json:"summary"`
}

// DoctorCheck is one diagnostic check in the doctor output.
type DoctorCheck struct {
	// ID is a stable, machine-readable identifier for the check.
	ID string `json:"id"`

	// Status is the check result: "pass", "warn", or "fail".
	Status string `json:"status"`

	// Message is a human-readable summary of what was found.
	Message string `json:"message"`

	// NextAction is a concrete remediation step the operator should take.
	NextAction string `json:"next_action"`
}

// DoctorSummary holds aggregate counts of check outcomes.
type DoctorSummary struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// Stable check IDs used by the doctor command.
const (
	checkIDConfig   = "config.file"
	checkIDServer   = "server.reachability"
	checkIDHistory  = "server.history"
	checkIDProfiles = "profiles.database"
)

// Stable status values for doctor checks.
const (
	statusPass = "pass"
	statusWarn = "warn"
	statusFail = "fail"
)

// runDoctor implements `tagdeck doctor`. Returns 0 when no checks fail,
// 1 when any check fails or an internal error occurs.
func runDoctor(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	var jsonMode bool
	fs.BoolVar(&jsonMode, "json", false, "Emit machine-readable JSON to stdout")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck doctor [options]\n\nDiagnose connectivity to the configured server.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	checks := make([]DoctorCheck, 0, 4)
	checks = append(checks, evalConfigFile(common.configPath))

	cfg, serverURL, err := common.resolve(stderr)
	if err != nil {
		checks = append(checks, DoctorCheck{
			ID:         checkIDServer,
			Status:     statusFail,
			Message:    fmt.Sprintf("Could not resolve a server: %v", err),
			NextAction: "Fix the config file or pass --server explicitly.",
		})
	} else {
		serverCheck, historyCheck := evalServer(cfg, serverURL)
		checks = append(checks, serverCheck, historyCheck)
		checks = append(checks, evalProfilesDB(cfg))
	}

	summary := DoctorSummary{}
	for _, c := range checks {
		switch c.Status {
		case statusPass:
			summary.Pass++
		case statusWarn:
			summary.Warn++
		case statusFail:
			summary.Fail++
		}
	}

	result := DoctorResult{Version: "1", Checks: checks, Summary: summary}

	if jsonMode {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "Error: failed to encode JSON: %v\n", err)
			return 1
		}
	} else {
		renderDoctorHuman(stdout, result)
	}

	if summary.Fail > 0 {
		return 1
	}
	return 0
}

// evalConfigFile evaluates the config.file check.
// Decision table:
//   - explicit --config that loads and validates -> pass
//   - no config file at the default location -> warn (defaults apply)
//   - file exists but fails to load or validate -> fail
func evalConfigFile(path string) DoctorCheck {
	check := DoctorCheck{ID: checkIDConfig}

	shown := path
	if shown == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err == nil {
			shown = defaultPath
			if _, statErr := os.Stat(defaultPath); os.IsNotExist(statErr) {
				check.Status = statusWarn
				check.Message = fmt.Sprintf("No config file at %s; built-in defaults apply.", defaultPath)
				check.NextAction = "Run 'tagdeck browse' once, or create the file by hand, to pin a server."
				return check
			}
		}
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		check.Status = statusFail
		check.Message = fmt.Sprintf("Config error: %v", err)
		check.NextAction = fmt.Sprintf("Fix %s and re-run doctor.", shown)
		return check
	}

	check.Status = statusPass
	check.Message = fmt.Sprintf("Config loaded from %s.", shown)
	check.NextAction = "No action required."
	return check
}

// evalServer evaluates server.reachability and server.history together,
// sharing one health probe.
func evalServer(cfg *config.Config, serverURL string) (DoctorCheck, DoctorCheck) {
	reach := DoctorCheck{ID: checkIDServer}
	hist := DoctorCheck{ID: checkIDHistory}

	client, err := newClient(cfg, serverURL)
	if err != nil {
		reach.Status = statusFail
		reach.Message = fmt.Sprintf("Invalid server URL %q: %v", serverURL, err)
		reach.NextAction = "Pass a valid http(s) URL with --server or fix the config."
		hist.Status = statusFail
		hist.Message = "Skipped: no usable server."
		hist.NextAction = "Fix the server URL first."
		return reach, hist
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	start := time.Now()
	health, err := client.CheckHealth(ctx)
	latency := time.Since(start)

	if err != nil {
		code, msg := apperr.ToCodeAndMessage(err)
		reach.Status = statusFail
		reach.Message = fmt.Sprintf("Server %s is not reachable: %s (%s)", serverURL, msg, code)
		reach.NextAction = "Check that the metadata server is running and the URL/port are right."
		hist.Status = statusFail
		hist.Message = "Skipped: server not reachable."
		hist.NextAction = "Restore server connectivity first."
		return reach, hist
	}

	version := health.Version
	if version == "" {
		version = "unknown version"
	}
	if latency > 2*time.Second {
		reach.Status = statusWarn
		reach.Message = fmt.Sprintf("Server %s responded (%s) but slowly: %s.", serverURL, version, latency.Round(time.Millisecond))
		reach.NextAction = "Check the network path; interactive editing will feel sluggish."
	} else {
		reach.Status = statusPass
		reach.Message = fmt.Sprintf("Server %s is healthy (%s, %s).", serverURL, version, latency.Round(time.Millisecond))
		reach.NextAction = "No action required."
	}

	actions, err := client.History(ctx)
	if err != nil {
		hist.Status = statusFail
		hist.Message = fmt.Sprintf("History endpoint failed: %v", err)
		hist.NextAction = "Update the server; undo/redo requires the /history API."
		return reach, hist
	}
	hist.Status = statusPass
	hist.Message = fmt.Sprintf("History endpoint OK (%d action(s) logged).", len(actions))
	hist.NextAction = "No action required."
	return reach, hist
}

// evalProfilesDB evaluates the profiles.database check.
func evalProfilesDB(cfg *config.Config) DoctorCheck {
	check := DoctorCheck{ID: checkIDProfiles}

	store, err := openProfiles(cfg)
	if err != nil {
		check.Status = statusFail
		check.Message = fmt.Sprintf("Profiles database error: %v", err)
		check.NextAction = "Check permissions on ~/.tagdeck, or set profiles_db in the config."
		return check
	}
	defer store.Close()

	list, err := store.List()
	if err != nil {
		check.Status = statusFail
		check.Message = fmt.Sprintf("Profiles database is not readable: %v", err)
		check.NextAction = "Remove the corrupt database; saved servers will need re-adding."
		return check
	}

	if len(list) == 0 {
		check.Status = statusWarn
		check.Message = "No saved servers."
		check.NextAction = "Save one with 'tagdeck servers add <name> <url>' or 'tagdeck discover --save'."
		return check
	}

	check.Status = statusPass
	check.Message = fmt.Sprintf("Profiles database OK (%d saved server(s)).", len(list))
	check.NextAction = "No action required."
	return check
}

// renderDoctorHuman writes the doctor result in human-readable format.
func renderDoctorHuman(w io.Writer, result DoctorResult) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Tagdeck Doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w, "")

	for _, c := range result.Checks {
		fmt.Fprintf(w, "  %s %s: %s\n", statusIcon(c.Status), c.ID, c.Message)
		if c.Status != statusPass {
			fmt.Fprintf(w, "    -> %s\n", c.NextAction)
		}
	}

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d failures\n",
		result.Summary.Pass, result.Summary.Warn, result.Summary.Fail)
	fmt.Fprintln(w, "")
}

// statusIcon returns a colored text marker for the check status.
func statusIcon(status string) string {
	switch status {
	case statusPass:
		return color.GreenString("[PASS]")
	case statusWarn:
		return color.YellowString("[WARN]")
	case statusFail:
		return color.RedString("[FAIL]")
	default:
		return "[????]"
	}
}
