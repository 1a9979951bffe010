package main

// common.go holds the flag plumbing shared by every command: config loading
// and server resolution. Flags always win over the config file, which wins
// over the saved default profile.

import (
	"flag"
	"fmt"
	"io"

	"github.com/tagdeck/tagdeck/internal/api"
	"github.com/tagdeck/tagdeck/internal/config"
	"github.com/tagdeck/tagdeck/internal/profiles"
)

// commonFlags are the options every server-talking command accepts.
type commonFlags struct {
	configPath string
	server     string
	profile    string
}

// register adds the shared flags to a command's flag set.
func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Path to config file (default: ~/.tagdeck/config.toml)")
	fs.StringVar(&c.server, "server", "", "Metadata server URL (overrides config and profiles)")
	fs.StringVar(&c.profile, "profile", "", "Use a saved server profile by name")
}

// resolve loads the config and determines the server URL:
// --server flag, then --profile, then the config file, then the saved
// default profile, then the built-in default.
func (c *commonFlags) resolve(stderr io.Writer) (*config.Config, string, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	if c.server != "" {
		return cfg, c.server, nil
	}

	if c.profile != "" {
		url, err := profileURL(cfg, c.profile)
		if err != nil {
			return nil, "", err
		}
		return cfg, url, nil
	}

	if cfg.Server != "" {
		return cfg, cfg.Server, nil
	}

	if url := defaultProfileURL(cfg, stderr); url != "" {
		return cfg, url, nil
	}

	return cfg, config.DefaultServer, nil
}

// newClient builds the api client for the resolved server.
func newClient(cfg *config.Config, serverURL string) (*api.Client, error) {
	return api.New(serverURL, api.Options{
		Timeout: cfg.RequestTimeout(),
		Retries: cfg.Retries(),
	})
}

// profileURL looks up a named profile in the profiles database.
func profileURL(cfg *config.Config, name string) (string, error) {
	store, err := openProfiles(cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()

	p, err := store.Get(name)
	if err != nil {
		return "", err
	}
	store.TouchLastUsed(name)
	return p.URL, nil
}

// defaultProfileURL returns the default profile's URL, "" when there is
// none. Database trouble is reported but not fatal: the built-in default
// still lets the command run.
func defaultProfileURL(cfg *config.Config, stderr io.Writer) string {
	store, err := openProfiles(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: could not open profiles database: %v\n", err)
		return ""
	}
	defer store.Close()

	p, err := store.Default()
	if err != nil || p == nil {
		return ""
	}
	store.TouchLastUsed(p.Name)
	return p.URL
}

// openProfiles opens the profiles database at the configured or default path.
func openProfiles(cfg *config.Config) (*profiles.Store, error) {
	path := cfg.ProfilesDB
	if path == "" {
		var err error
		path, err = config.DefaultProfilesDBPath()
		if err != nil {
			return nil, err
		}
	}
	return profiles.Open(path)
}
