package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pagemine/pagemine/internal/model"
)

// Default configuration values.
// These are politeness-oriented defaults for crawling sites you do not
// operate; aggressive settings must be opted into via flags.
const (
	// DefaultTimeout is the per-request timeout. 30 seconds covers slow
	// origins without letting a single stuck request stall a worker for
	// minutes.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPages bounds how many pages one crawl may fetch. This
	// prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 100

	// DefaultMaxDepth limits link-following distance from the seed.
	// Three hops reach most content of a typical site section without
	// wandering into the whole site graph.
	DefaultMaxDepth = 3

	// DefaultWorkers is the number of concurrent fetch workers per crawl.
	// Four workers keep a crawl fast while staying gentle on a single
	// origin host.
	DefaultWorkers = 4

	// DefaultRetries is the number of extra attempts on transient fetch
	// failures (transport errors and 5xx responses).
	DefaultRetries = 2

	// DefaultRatePerSecond caps requests per second across all workers of
	// one crawl. Two requests per second is conservative and respectful
	// of server resources. Can be adjusted via the --rate CLI flag.
	DefaultRatePerSecond = 2.0

	// DefaultBatchSize is the number of concurrent crawls when multiple
	// seed URLs are given.
	DefaultBatchSize = 3

	// DefaultUserAgent identifies pagemine in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "PageMine/1.0 (+https://github.com/pagemine/pagemine)"

	// AppName is the application name used for XDG directory paths.
	AppName = "pagemine"
)

// Config holds all configuration options for pagemine.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Seeds is the list of URLs to crawl. Each seed gets its own crawl
	// with its own frontier and report.
	Seeds []string

	// Fields are the extraction fields, from --field flags or the
	// configuration file.
	Fields []model.Field

	// FollowLinks enables link discovery beyond the seed page.
	FollowLinks bool

	// SameDomainOnly restricts discovered links to the seed's registrable
	// domain.
	SameDomainOnly bool

	// MaxPages is the page budget per crawl.
	MaxPages int

	// MaxDepth is the link-following depth limit. Zero means the seed
	// page only.
	MaxDepth int

	// Workers is the number of concurrent fetch workers per crawl.
	Workers int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Retries is the number of extra attempts on transient failures.
	Retries int

	// RatePerSecond caps the request rate per crawl. Zero means
	// unlimited.
	RatePerSecond float64

	// TimeBudget bounds the wall-clock duration of one crawl. Zero means
	// unlimited.
	TimeBudget time.Duration

	// RespectRobots enables robots.txt evaluation before each fetch.
	RespectRobots bool

	// Headers are extra HTTP headers sent with every page request, from
	// --header flags merged with the configuration file.
	Headers map[string]string

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps operators identify crawler traffic.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent crawls for multiple seeds.
	BatchSize int

	// CSVReport, JSONReport, and MarkdownReport select the output format.
	// At most one may be set; the default is the human-readable text
	// format.
	CSVReport      bool
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pagemine in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite report archive.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether finished reports are archived.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, rate).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		FollowLinks:    true,
		SameDomainOnly: true,
		MaxPages:       DefaultMaxPages,
		MaxDepth:       DefaultMaxDepth,
		Workers:        DefaultWorkers,
		Timeout:        DefaultTimeout,
		Retries:        DefaultRetries,
		RatePerSecond:  DefaultRatePerSecond,
		RespectRobots:  true,
		UserAgent:      DefaultUserAgent,
		BatchSize:      DefaultBatchSize,
		SaveToDB:       true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for pagemine.
// On Linux: ~/.local/share/pagemine
// On macOS: ~/Library/Application Support/pagemine
// On Windows: %LOCALAPPDATA%\pagemine
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagemine.
// On Linux: ~/.config/pagemine
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	if len(c.Fields) == 0 {
		return ErrNoFields
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.RatePerSecond < 0 {
		return ErrInvalidRate
	}

	formats := 0
	for _, enabled := range []bool{c.CSVReport, c.JSONReport, c.MarkdownReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	return nil
}
