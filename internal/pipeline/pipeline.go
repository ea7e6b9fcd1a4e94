// Package pipeline orchestrates album ingestion: it walks a dropped
// directory tree, extracts image metadata, classifies and synthesizes
// covers, resolves layout and binding, sequences pages, validates against
// the standard-size catalog, and prices each resulting folder.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/book-expert/logger"
	"github.com/cheggaaa/pb/v3"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/blank"
	"github.com/book-expert/album-ingest-service/internal/collect"
	"github.com/book-expert/album-ingest-service/internal/imagemeta"
	"github.com/book-expert/album-ingest-service/internal/raster"
	"github.com/book-expert/album-ingest-service/internal/specmatch"
)

// Options holds all configurable parameters for a Processor.
type Options struct {
	ProgressBarOutput  io.Writer
	Catalog            []album.StandardSize
	Rates              album.Rates
	LayoutDefault      album.LayoutChoice
	BindingDefault     album.BindingChoice
	Workers            int
	MaxDepth           int
	AssumedDPI         float64
	HalfWidthTolerance int
	BlankThresholds    blank.Thresholds
	MatchTolerances    specmatch.Tolerances
}

// Processor encapsulates the logic for processing one dropped directory tree
// into priced, validated order line candidates.
type Processor struct {
	config    Options
	log       *logger.Logger
	collector *collect.Collector
}

// NewProcessor creates and initializes a new Processor with the given options
// and logger. It sets sensible defaults for any zero-value fields in the
// Options struct.
func NewProcessor(opts *Options, log *logger.Logger) *Processor {
	applyDefaultOptions(opts)

	return &Processor{
		config:    *opts,
		log:       log,
		collector: collect.New(opts.MaxDepth, log),
	}
}

// applyDefaultOptions fills zero-value fields in Options with sensible
// defaults.
func applyDefaultOptions(opts *Options) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	if opts.MaxDepth <= 0 {
		opts.MaxDepth = collect.MaxDepth
	}

	if opts.AssumedDPI <= 0 {
		opts.AssumedDPI = imagemeta.DefaultAssumedDPI
	}

	if opts.HalfWidthTolerance <= 0 {
		opts.HalfWidthTolerance = raster.DefaultHalfWidthTolerance
	}

	if len(opts.Catalog) == 0 {
		opts.Catalog = specmatch.DefaultCatalog()
	}

	if opts.ProgressBarOutput == nil {
		opts.ProgressBarOutput = os.Stdout
	}
}

// folderJob carries one collected folder to a worker, along with its slot in
// the ordered result set.
type folderJob struct {
	collected collect.Folder
	index     int
}

// ProcessRoot ingests the tree rooted at rootDir and returns the resulting
// folders in traversal order. Independent folders are processed concurrently
// by a bounded worker pool; files within one folder are strictly sequential.
// Cancelling the context abandons queued folders; folders already processed
// are returned as-is.
func (processor *Processor) ProcessRoot(
	ctx context.Context,
	rootDir string,
) ([]*album.UploadedFolder, error) {
	collected, collectErr := processor.collector.Collect(rootDir)
	if collectErr != nil {
		return nil, fmt.Errorf("failed to collect folders: %w", collectErr)
	}

	processor.log.Info("Found %d folder(s) with images under %s", len(collected), rootDir)

	results := make([]*album.UploadedFolder, len(collected))
	jobs := make(chan folderJob, len(collected))

	progressBar := pb.New(len(collected)).
		SetTemplateString(`{{ bar . " " "━" "━" " " " "}} {{percent .}} {{rtime .}}`).
		SetWriter(processor.config.ProgressBarOutput).
		Start()
	defer progressBar.Finish()

	var waitGroup sync.WaitGroup

	for range processor.config.Workers {
		waitGroup.Add(1)

		go processor.folderWorker(ctx, &waitGroup, jobs, results, progressBar)
	}

	for index, folder := range collected {
		jobs <- folderJob{collected: folder, index: index}
	}

	close(jobs)
	waitGroup.Wait()

	return compactResults(results), nil
}

// folderWorker pulls folder jobs until the channel is closed and empty.
func (processor *Processor) folderWorker(
	ctx context.Context,
	waitGroup *sync.WaitGroup,
	jobs <-chan folderJob,
	results []*album.UploadedFolder,
	progressBar *pb.ProgressBar,
) {
	defer waitGroup.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			processor.log.Warn("Cancelled, skipping folder '%s'", job.collected.Title)

			continue
		}

		results[job.index] = processor.processFolder(ctx, job.collected)

		progressBar.Increment()
	}
}

// compactResults drops slots left empty by cancellation, preserving order.
func compactResults(results []*album.UploadedFolder) []*album.UploadedFolder {
	folders := make([]*album.UploadedFolder, 0, len(results))

	for _, folder := range results {
		if folder != nil {
			folders = append(folders, folder)
		}
	}

	return folders
}
