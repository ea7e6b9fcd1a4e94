// Command album-ingest runs the album ingestion pipeline over a local
// directory tree and prints one priced summary per folder.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/pelletier/go-toml/v2"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/blank"
	"github.com/book-expert/album-ingest-service/internal/pipeline"
	"github.com/book-expert/album-ingest-service/internal/specmatch"
)

// Define named types for each section of the configuration.
type configPaths struct {
	InputDir string `toml:"input_dir"`
}

type configLogsDir struct {
	AlbumIngest string `toml:"album_ingest"`
}

type configSettings struct {
	DPI      float64 `toml:"dpi"`
	Workers  int     `toml:"workers"`
	MaxDepth int     `toml:"max_depth"`
}

// config represents the structure of the project.toml file.
type config struct {
	Paths    configPaths          `toml:"paths"`
	LogsDir  configLogsDir        `toml:"logs_dir"`
	Settings configSettings       `toml:"settings"`
	Rates    album.Rates          `toml:"rates"`
	Catalog  []album.StandardSize `toml:"catalog"`
}

func main() {
	ctx := context.Background()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main logic function, separated from main to allow for easier
// testing and clean exit handling.
func run(ctx context.Context) error {
	projectRoot, configPath, err := configurator.FindProjectRoot(".")
	if err != nil {
		return fmt.Errorf("could not find project root: %w", err)
	}

	cfg, err := safeLoadConfig(configPath)
	if err != nil {
		return err
	}

	flgs := parseFlags()
	options := mergeConfigAndFlags(&cfg, flgs)

	return processWithLogger(ctx, &cfg, &options, projectRoot, flgs.inputPath)
}

// safeLoadConfig loads the TOML config, allowing missing file without error.
func safeLoadConfig(path string) (config, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			var emptyCfg config

			return emptyCfg, nil
		}

		return config{}, fmt.Errorf("error loading config file: %w", err)
	}

	return cfg, nil
}

// loadConfig reads and parses the project.toml file.
func loadConfig(path string) (config, error) {
	var cfg config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		var zero config

		return zero, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

// flags represents the command-line arguments.
type flags struct {
	inputPath string
	layout    string
	binding   string
	dpi       float64
	workers   int
}

// parseFlags defines and parses command-line flags.
func parseFlags() flags {
	var flagsVar flags
	flag.StringVar(
		&flagsVar.inputPath,
		"input",
		"",
		"Input directory holding album folders (required).",
	)
	flag.StringVar(
		&flagsVar.layout,
		"layout",
		"",
		"Page layout override: single or spread. Auto-detected when empty.",
	)
	flag.StringVar(
		&flagsVar.binding,
		"binding",
		"",
		"Binding direction override, e.g. left_start_right_end. Auto-detected when empty.",
	)
	flag.Float64Var(&flagsVar.dpi, "dpi", 0, "Assumed DPI for images without embedded resolution.")
	flag.IntVar(&flagsVar.workers, "workers", 0, "Number of concurrent folder workers.")
	flag.Parse()

	return flagsVar
}

// mergeConfigAndFlags combines settings from the config file and command-line
// flags. Flags take precedence over the config file settings.
func mergeConfigAndFlags(cfg *config, flgs flags) pipeline.Options {
	opts := pipeline.Options{
		ProgressBarOutput:  os.Stderr,
		Catalog:            cfg.Catalog,
		Rates:              cfg.Rates,
		LayoutDefault:      album.AutoLayout(),
		BindingDefault:     album.AutoBinding(),
		Workers:            cfg.Settings.Workers,
		MaxDepth:           cfg.Settings.MaxDepth,
		AssumedDPI:         cfg.Settings.DPI,
		HalfWidthTolerance: 0,
		BlankThresholds:    blank.Thresholds{Dark: 0, Light: 0, SampleSize: 0},
		MatchTolerances:    specmatch.Tolerances{Snap: 0, Exact: 0, Ratio: 0},
	}

	// Command-line flags override config file values.
	if flgs.layout != "" {
		opts.LayoutDefault = album.ExplicitLayout(album.PageLayout(flgs.layout))
	}

	if flgs.binding != "" {
		opts.BindingDefault = album.ExplicitBinding(album.BindingDirection(flgs.binding))
	}

	if flgs.dpi > 0 {
		opts.AssumedDPI = flgs.dpi
	}

	if flgs.workers > 0 {
		opts.Workers = flgs.workers
	}

	return opts
}

// processWithLogger sets up the logger, runs the processor, and prints the
// per-folder summaries.
func processWithLogger(
	ctx context.Context,
	cfg *config,
	options *pipeline.Options,
	projectRoot string,
	inputFlag string,
) error {
	log, err := setupLogger(projectRoot, cfg.LogsDir.AlbumIngest)
	if err != nil {
		return fmt.Errorf("could not set up logger: %w", err)
	}

	defer func() {
		cerr := log.Close()
		if cerr != nil {
			_, _ = fmt.Fprintf(
				os.Stderr,
				"failed to close logger: %v\n",
				cerr,
			)
		}
	}()

	inputDir := cfg.Paths.InputDir
	if inputFlag != "" {
		inputDir = inputFlag
	}

	processor := pipeline.NewProcessor(options, log)

	folders, procErr := processor.ProcessRoot(ctx, inputDir)
	if procErr != nil {
		return fmt.Errorf("album ingestion failed: %w", procErr)
	}

	for _, folder := range folders {
		summarize(log, folder)
	}

	return nil
}

// summarize logs one human-readable line per folder plus any mismatch detail.
func summarize(log *logger.Logger, folder *album.UploadedFolder) {
	label := folder.SizeLabel
	if label == "" {
		label = fmt.Sprintf("%.1fx%.1f", folder.AlbumWidth, folder.AlbumHeight)
	}

	log.Success(
		"%s: %d pages, %s, %s, %s, total %.2f",
		folder.Title,
		folder.PageCount,
		label,
		folder.Layout,
		folder.Status,
		folder.Price.Total,
	)

	for _, name := range folder.MismatchedFiles {
		log.Warn("%s: file '%s' does not match the album size", folder.Title, name)
	}
}

// setupLogger initializes the logger, creating the log directory if needed.
func setupLogger(projectRoot, logDirConfig string) (*logger.Logger, error) {
	logDir := logDirConfig
	if logDir == "" {
		logDir = filepath.Join(projectRoot, "logs", "album_ingest")
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("20060102_150405"))

	log, err := logger.New(logDir, logFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}
