package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pagemine/pagemine/internal/config"
	"github.com/pagemine/pagemine/internal/crawler"
	"github.com/pagemine/pagemine/internal/database"
	"github.com/pagemine/pagemine/internal/log"
	"github.com/pagemine/pagemine/internal/model"
	"github.com/pagemine/pagemine/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl one or more sites and extract structured data",
		Long: `Crawl fetches pages starting from the given seed URLs and extracts the
configured fields from every page.

Fields are named CSS selectors or XPath expressions. The crawl follows
same-domain links up to the configured depth and page budget, rate
limited and honoring robots.txt by default.

Examples:
  # Extract titles and headings from a site
  pagemine crawl --field title=title --field heading=h1 https://example.com

  # Use an XPath expression
  pagemine crawl --field price=xpath://span[@class='price'] https://shop.example.com

  # Single page only, as JSON
  pagemine crawl --field title=title --follow=false --json https://example.com

  # Crawl several sites with shared fields from .pagemine
  pagemine crawl https://example.com https://example.org

  # Authenticated crawl
  pagemine crawl --field title=title --header "Authorization: Bearer token" https://example.com

Configuration file (.pagemine) example:
  fields:
    - name: title
      selector: h1
  sites:
    example.com:
      depth: 5
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Extraction flags
	cmd.Flags().StringArrayP("field", "f", nil,
		"Extraction field as name=selector or name=xpath:expression (repeatable)")

	// Crawl behavior flags
	cmd.Flags().Bool("follow", true,
		"Follow links discovered on crawled pages")
	cmd.Flags().Bool("same-domain", true,
		"Restrict discovered links to the seed's registrable domain")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per seed")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from the seed (0 = seed page only)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers per crawl")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Int("retries", config.DefaultRetries,
		"Retry attempts for transient fetch failures")
	cmd.Flags().Float64("rate", config.DefaultRatePerSecond,
		"Maximum requests per second per crawl (0 = unlimited)")
	cmd.Flags().Duration("time-budget", 0,
		"Maximum wall-clock duration per crawl (0 = unlimited)")
	cmd.Flags().Bool("respect-robots", true,
		"Honor robots.txt disallow rules")
	cmd.Flags().StringArrayP("header", "H", nil,
		"Extra HTTP header as 'Name: value' (repeatable)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls for multiple seeds")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pagemine in current or home directory)")

	// Report flags
	cmd.Flags().Bool("csv", false,
		"Output CSV report (mutually exclusive with --json and --markdown)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --csv and --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --csv and --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Archive flags
	cmd.Flags().String("db-dir", "",
		"Directory for the report archive (default: XDG data directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not archive finished reports")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seeds = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	fieldSpecs, err := cmd.Flags().GetStringArray("field")
	if err != nil {
		return nil, err
	}
	cfg.Fields, err = config.ParseFieldSpecs(fieldSpecs)
	if err != nil {
		return nil, err
	}

	cfg.FollowLinks, err = cmd.Flags().GetBool("follow")
	if err != nil {
		return nil, err
	}

	cfg.SameDomainOnly, err = cmd.Flags().GetBool("same-domain")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Retries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.RatePerSecond, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	cfg.TimeBudget, err = cmd.Flags().GetDuration("time-budget")
	if err != nil {
		return nil, err
	}

	cfg.RespectRobots, err = cmd.Flags().GetBool("respect-robots")
	if err != nil {
		return nil, err
	}

	headerSpecs, err := cmd.Flags().GetStringArray("header")
	if err != nil {
		return nil, err
	}
	cfg.Headers, err = parseHeaderSpecs(headerSpecs)
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load field and site configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		// Fields from the file are the fallback when no --field was given.
		if len(cfg.Fields) == 0 {
			cfg.Fields = cfg.SiteConfigs.Fields
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	return cfg, nil
}

// parseHeaderSpecs parses --header flag values of the form "Name: value".
func parseHeaderSpecs(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, ":")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", spec)
		}
		headers[name] = value
	}
	return headers, nil
}

// runCrawl executes the crawl for all configured seeds.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Open the report archive unless saving is disabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck
		logger.Debug("report archive opened", "dir", cfg.DBDir)
	}

	reqs := make([]model.CrawlRequest, len(cfg.Seeds))
	for i, seed := range cfg.Seeds {
		reqs[i] = buildRequest(cfg, seed)
	}

	factory := func(req model.CrawlRequest) (*crawler.Crawler, error) {
		return crawler.New(req,
			crawler.WithLogger(logger),
			crawler.WithRatePerSecond(cfg.RatePerSecond),
			crawler.WithRespectRobots(cfg.RespectRobots),
			crawler.WithUserAgent(cfg.UserAgent),
		)
	}

	batch := crawler.NewBatch(factory,
		crawler.WithBatchConcurrency(cfg.BatchSize),
		crawler.WithBatchLogger(logger),
	)

	reports, err := batch.Run(ctx, reqs)

	var failed int
	for _, rep := range reports {
		if rep == nil {
			// Slot never ran because the batch was cancelled first.
			continue
		}
		if outErr := outputReport(cfg, rep); outErr != nil {
			logger.Error("report output failed", "target", rep.SeedURL, "error", outErr)
		}
		if saveErr := saveReport(ctx, db, rep, logger); saveErr != nil {
			logger.Error("failed to archive report", "target", rep.SeedURL, "error", saveErr)
		}
		if rep.Status == model.StatusFailed {
			failed++
		}
	}

	if err != nil {
		return fmt.Errorf("crawl interrupted: %w", err)
	}
	if failed == len(reports) && failed > 0 {
		return fmt.Errorf("all %d crawl(s) failed", failed)
	}
	return nil
}

// buildRequest turns the global config plus per-site overrides into one
// crawl request.
func buildRequest(cfg *config.Config, seed string) model.CrawlRequest {
	req := model.CrawlRequest{
		SeedURL:        seed,
		Fields:         cfg.Fields,
		FollowLinks:    cfg.FollowLinks,
		SameDomainOnly: cfg.SameDomainOnly,
		MaxPages:       cfg.MaxPages,
		MaxDepth:       cfg.MaxDepth,
		Workers:        cfg.Workers,
		Timeout:        cfg.Timeout,
		Retries:        cfg.Retries,
		Headers:        cfg.Headers,
		TimeBudget:     cfg.TimeBudget,
	}

	if cfg.SiteConfigs == nil {
		return req
	}

	host := seedHost(seed)
	site := cfg.SiteConfigs.GetSiteConfig(host)

	if len(site.Fields) > 0 {
		req.Fields = site.Fields
	}
	if site.Depth > 0 {
		req.MaxDepth = site.Depth
	}
	if site.MaxPages > 0 {
		req.MaxPages = site.MaxPages
	}
	if len(site.Headers) > 0 {
		merged := make(map[string]string, len(req.Headers)+len(site.Headers))
		for k, v := range req.Headers {
			merged[k] = v
		}
		for k, v := range site.Headers {
			merged[k] = v
		}
		req.Headers = merged
	}

	return req
}

// seedHost extracts the bare hostname used as the site config key.
func seedHost(seed string) string {
	u, err := url.Parse(seed)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// outputReport renders the crawl report in the requested format.
func outputReport(cfg *config.Config, rep *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600: extracted data may contain content from authenticated pages
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.CSVReport:
		w = report.NewCSVWriter(output)
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(rep)
	return err
}

// saveReport archives the report if the archive is enabled.
// If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.CrawlDB, rep *model.CrawlReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveReport(ctx, rep)
	if err != nil {
		return err
	}

	logger.Debug("report archived", "target", rep.SeedURL, "id", id)
	return nil
}
