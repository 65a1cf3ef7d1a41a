// Package config resolves runtime settings from a .env file, the process
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL  = "GROCERY_API_URL"
	EnvTimeout = "GROCERY_TIMEOUT"
	EnvTheme   = "GROCERY_THEME"
	EnvLog     = "GROCERY_LOG"
	EnvStrict  = "GROCERY_STRICT"

	DefaultAPIURL  = "http://localhost:3500"
	DefaultTheme   = "classic"
	DefaultEnvFile = ".env"
)

// Themes lists the accepted theme names.
var Themes = []string{"classic", "neon", "mono"}

// Config is the resolved runtime configuration.
type Config struct {
	APIURL  string
	Timeout time.Duration // 0 = transport default
	Theme   string
	LogFile string // "" = stderr with --verbose, otherwise discarded
	Strict  bool   // commit deletes only after the store confirms
	Verbose bool
	NoDelay bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL: DefaultAPIURL,
		Theme:  DefaultTheme,
	}
}

// Load reads envFile (missing is fine) and the process environment.
// Values already present in the environment win over the file.
func Load(envFile string) (Config, error) {
	return load(envFile, os.LookupEnv)
}

func load(envFile string, lookup func(string) (string, bool)) (Config, error) {
	fileVals := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVals = vals
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	// an empty variable counts as unset
	get := func(key string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(fileVals[key])
	}

	cfg := Default()
	if v := get(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := get(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := get(EnvTheme); v != "" {
		cfg.Theme = strings.ToLower(v)
	}
	cfg.LogFile = get(EnvLog)
	if v := get(EnvStrict); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvStrict, err)
		}
		cfg.Strict = b
	}
	return cfg, nil
}

// Validate checks the fields that flags or the environment may have set.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api url %q: missing host", c.APIURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	for _, t := range Themes {
		if c.Theme == t {
			return nil
		}
	}
	return fmt.Errorf("unknown theme %q: must be one of %v", c.Theme, Themes)
}
