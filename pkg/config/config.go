package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	log "github.com/cloud-bulldozer/search-bench/pkg/logging"
	"github.com/cloud-bulldozer/search-bench/pkg/sample"
	"gopkg.in/yaml.v3"
)

// DefaultRuns is used when the operator does not pass a run count.
const DefaultRuns = 200

// DefaultBody is the query every search trial sends unless overridden.
const DefaultBody = `{"query":{"query_string":{"query":"*"}},"size":10}`

// ErrInvalidRuns is a configuration error on the run count.
var ErrInvalidRuns = errors.New("invalid number of runs")

// Config describes one benchmark
type Config struct {
	Runs          int           `yaml:"runs,omitempty" json:"runs"`
	Driver        string        `yaml:"driver,omitempty" json:"driver"`
	Mode          string        `yaml:"mode,omitempty" json:"mode"`
	URL           string        `yaml:"url,omitempty" json:"url"`
	Index         string        `yaml:"index,omitempty" json:"index"`
	Username      string        `yaml:"username,omitempty" json:"-"`
	Password      string        `yaml:"password,omitempty" json:"-"`
	Body          string        `yaml:"body,omitempty" json:"body"`
	FilterPath    string        `yaml:"filterPath,omitempty" json:"filterPath,omitempty"`
	FreshClient   bool          `yaml:"freshClient,omitempty" json:"freshClient"`
	Timeout       time.Duration `yaml:"timeout,omitempty" json:"timeout"`
	FailurePolicy string        `yaml:"failurePolicy,omitempty" json:"failurePolicy"`
	Insecure      bool          `yaml:"insecure,omitempty" json:"insecure"`
}

// Drivers we will support in search-bench
const validDrivers = "^(elasticsearch|opensearch)$"

// Modes of the operation under test
const validModes = "^(search|raw|bulk)$"

// Default returns the built-in benchmark against a local node.
func Default() Config {
	return Config{
		Runs:          DefaultRuns,
		Driver:        "elasticsearch",
		Mode:          "search",
		URL:           "http://localhost:9200",
		Index:         "bench_index",
		Body:          DefaultBody,
		FailurePolicy: string(sample.IncludeFailures),
	}
}

// Validate checks the benchmark before any trial executes.
func Validate(cfg Config) error {
	if cfg.Runs < 1 {
		return fmt.Errorf("%w: runs must be > 0, got %d", ErrInvalidRuns, cfg.Runs)
	}
	if !regexp.MustCompile(validDrivers).MatchString(cfg.Driver) {
		return fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	if !regexp.MustCompile(validModes).MatchString(cfg.Mode) {
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url %q", cfg.URL)
	}
	if cfg.Index == "" {
		return fmt.Errorf("index must be set")
	}
	if cfg.Mode != "bulk" && !json.Valid([]byte(cfg.Body)) {
		return fmt.Errorf("body is not valid JSON")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	if _, err := sample.ParseFailurePolicy(cfg.FailurePolicy); err != nil {
		return err
	}
	return nil
}

// Policy returns the failure policy of a validated Config.
func (c Config) Policy() sample.FailurePolicy {
	p, _ := sample.ParseFailurePolicy(c.FailurePolicy)
	return p
}

// LoadConf reads the benchmark configuration file without validating it, so
// the caller can still override keys. Keys missing from the file keep their
// Default value.
func LoadConf(fn string) (Config, error) {
	log.Infof("📒 Reading %s file. ", fn)
	cfg := Default()
	buf, err := os.ReadFile(fn)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("in file %q: %v", fn, err)
	}
	return cfg, nil
}

// ParseConf will read in the benchmark configuration file and validate it.
func ParseConf(fn string) (Config, error) {
	cfg, err := LoadConf(fn)
	if err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("in file %q: %w", fn, err)
	}
	return cfg, nil
}

// ParseRuns reads the optional positional run count. No argument means
// DefaultRuns; anything that is not a positive integer is an error.
func ParseRuns(args []string) (int, error) {
	if len(args) == 0 {
		return DefaultRuns, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidRuns, args[0])
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: runs must be > 0, got %d", ErrInvalidRuns, n)
	}
	return n, nil
}

// Show Display the benchmark config
func Show(c Config) {
	log.Infof("🗒️  Running %d %s %s trials against %s/%s (fresh client %t, failures %s)", c.Runs, c.Driver, c.Mode, c.URL, c.Index, c.FreshClient, c.Policy())
}
