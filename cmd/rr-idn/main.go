package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/haukened/rr-idn/internal/idn/common/clock"
	"github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/config"
	"github.com/haukened/rr-idn/internal/idn/domain"
	"github.com/haukened/rr-idn/internal/idn/infra/prefs"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/bloom"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/bolt"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/parsers"
	"github.com/haukened/rr-idn/internal/idn/services/idn"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "rr-idn"
)

// ErrConversionFailed is returned by Run when at least one input could not
// be converted.
var ErrConversionFailed = errors.New("conversion failed")

// Application holds all the components of the IDN converter
type Application struct {
	config  *config.AppConfig
	service *idn.Service
	prefs   *prefs.File     // nil without a preference file
	store   blocklist.Store // nil without a blocklist db
	convert func(string) (string, error)
	logger  log.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Debug(map[string]any{
		"app":            appName,
		"version":        version,
		"env":            cfg.Env,
		"direction":      cfg.Direction,
		"mode":           cfg.Mode,
		"profile":        cfg.Profile,
		"prefs_file":     cfg.PrefsFile,
		"blocklist_file": cfg.BlocklistFile,
		"blocklist_db":   cfg.BlocklistDB,
		"watch":          cfg.Watch,
	}, "Starting rr-idn")

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGINT/SIGTERM stop, SIGHUP reloads every preference
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigChan {
			if sig == syscall.SIGHUP {
				log.Info(map[string]any{"signal": sig.String()}, "Reload signal received")
				app.Reload()
				continue
			}
			log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
			cancel()
			return
		}
	}()

	runErr := app.Run(ctx, os.Args[1:])
	if err := app.Close(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error closing blocklist store")
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
		os.Exit(1)
	}
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Create shared clock for consistent time across all components
	clk := &clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Build repository layer
	repos, err := buildRepositories(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build repositories: %w", err)
	}

	// Build preference layer
	file, err := buildPrefs(cfg, logger)
	if err != nil {
		if repos.store != nil {
			_ = repos.store.Close()
		}
		return nil, fmt.Errorf("failed to build preferences: %w", err)
	}

	// Build service layer
	service := idn.NewService(idn.Options{
		Prefs:        layeredPrefs{file: file, defaults: configPrefs(cfg)},
		Blocklist:    repos.source,
		BloomFactory: bloom.NewFactory(),
		CacheSize:    cfg.VerdictCacheSize(),
		Logger:       logger,
	})

	convert, err := converterFor(service, cfg.Direction, cfg.Mode)
	if err != nil {
		if repos.store != nil {
			_ = repos.store.Close()
		}
		return nil, err
	}

	return &Application{
		config:  cfg,
		service: service,
		prefs:   file,
		store:   repos.store,
		convert: convert,
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}, nil
}

// repositories holds all repository implementations
type repositories struct {
	source blocklist.Source
	store  blocklist.Store
}

// buildRepositories creates the blocklist source: the built-in list or a
// blocklist file, backed by a bbolt snapshot when a db path is configured.
func buildRepositories(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (*repositories, error) {
	var primary blocklist.Source = blocklist.DefaultSource()
	if cfg.BlocklistFile != "" {
		primary = parsers.NewFileSource(cfg.BlocklistFile, logger)
	}

	if cfg.BlocklistDB == "" {
		return &repositories{source: primary}, nil
	}

	store, err := bolt.New(cfg.BlocklistDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open blocklist db: %w", err)
	}
	st := store.Stats()
	log.Info(map[string]any{
		"path":    cfg.BlocklistDB,
		"version": st.Version,
		"ranges":  st.Ranges,
	}, "Blocklist store opened")

	return &repositories{
		source: blocklist.NewCachedSource(primary, store, clk, logger),
		store:  store,
	}, nil
}

func buildPrefs(cfg *config.AppConfig, logger log.Logger) (*prefs.File, error) {
	if cfg.PrefsFile == "" {
		return nil, nil
	}
	return prefs.Open(cfg.PrefsFile, logger)
}

// layeredPrefs resolves a preference from the preference file first and
// falls back to the values derived from the environment.
type layeredPrefs struct {
	file     *prefs.File
	defaults map[string]string
}

func (p layeredPrefs) String(key string) (string, bool) {
	if p.file != nil {
		if v, ok := p.file.String(key); ok {
			return v, true
		}
	}
	v, ok := p.defaults[key]
	return v, ok
}

func configPrefs(cfg *config.AppConfig) map[string]string {
	m := map[string]string{
		idn.PrefRestrictionProfile: cfg.Profile,
		idn.PrefShowPunycode:       strconv.FormatBool(cfg.ShowPunycode),
	}
	if len(cfg.ExtraAllowedChars) > 0 {
		m[idn.PrefExtraAllowedChars] = strings.Join(cfg.ExtraAllowedChars, ",")
	}
	if len(cfg.ExtraBlockedChars) > 0 {
		m[idn.PrefExtraBlockedChars] = strings.Join(cfg.ExtraBlockedChars, ",")
	}
	return m
}

// converterFor returns the conversion selected by direction. mode applies
// to the ascii and unicode directions only.
func converterFor(svc *idn.Service, direction, mode string) (func(string) (string, error), error) {
	m, err := domain.ParseStringPrepMode(mode)
	if err != nil {
		return nil, err
	}
	switch direction {
	case "ascii":
		return func(s string) (string, error) { return svc.UTF8ToACE(s, m) }, nil
	case "unicode":
		return func(s string) (string, error) { return svc.ACEToUTF8(s, m, "") }, nil
	case "display":
		return func(s string) (string, error) {
			out, _, err := svc.ConvertToDisplay(s)
			return out, err
		}, nil
	case "normalize":
		return svc.Normalize, nil
	default:
		return nil, fmt.Errorf("unsupported direction: %q", direction)
	}
}

// Run converts every argument, or every line of input when there are no
// arguments, writing one result per line. In watch mode preference and
// blocklist file changes are applied while input is being read. Run returns
// when the input ends or ctx is cancelled.
func (app *Application) Run(ctx context.Context, args []string) error {
	if app.config.Watch {
		if err := app.watch(); err != nil {
			return err
		}
	}

	total, failed := 0, 0
	convertOne := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || strings.HasPrefix(s, "#") {
			return
		}
		total++
		out, err := app.convert(s)
		if err != nil {
			failed++
			app.logger.Debug(map[string]any{"input": s, "error": err.Error()}, "conversion_failed")
			fmt.Fprintf(app.errOut, "%s: %v\n", s, err)
			return
		}
		fmt.Fprintln(app.out, out)
	}

	if len(args) > 0 {
		for _, arg := range args {
			if ctx.Err() != nil {
				break
			}
			convertOne(arg)
		}
	} else if err := app.readLines(ctx, convertOne); err != nil {
		return err
	}

	st := app.service.Stats()
	app.logger.Debug(map[string]any{
		"inputs":       total,
		"failed":       failed,
		"ranges":       st.Ranges,
		"cache_hits":   st.Cache.Hits,
		"cache_misses": st.Cache.Misses,
	}, "Run finished")

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d inputs", ErrConversionFailed, failed, total)
	}
	return nil
}

// readLines feeds each input line to fn until the input ends or ctx is done.
func (app *Application) readLines(ctx context.Context, fn func(string)) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(app.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			fn(line)
		}
	}
}

// watch forwards preference and blocklist file changes to the service.
func (app *Application) watch() error {
	if app.prefs != nil {
		if err := app.prefs.Watch(app.service.PrefsChanged); err != nil {
			return fmt.Errorf("failed to watch preference file: %w", err)
		}
	}
	if app.config.BlocklistFile != "" {
		err := prefs.WatchFile(app.config.BlocklistFile, idn.PrefBlocklist, app.logger, app.service.PrefsChanged)
		if err != nil {
			return fmt.Errorf("failed to watch blocklist file: %w", err)
		}
	}
	log.Info(map[string]any{
		"prefs_file":     app.config.PrefsFile,
		"blocklist_file": app.config.BlocklistFile,
	}, "Watching for preference changes")
	return nil
}

// Reload re-reads the preference file, if any, and rebuilds the whole
// configuration.
func (app *Application) Reload() {
	if app.prefs != nil {
		if _, err := app.prefs.Reload(); err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "Preference reload failed")
		}
	}
	app.service.PrefsChanged("")
}

// Close releases the blocklist store.
func (app *Application) Close() error {
	if app.store == nil {
		return nil
	}
	return app.store.Close()
}
