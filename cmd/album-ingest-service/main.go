// This file orchestrates the album-ingest service, initializing and running
// the NATS worker that turns dropped album directories into priced,
// validated order line candidates.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/book-expert/configurator"
	"github.com/book-expert/events"
	"github.com/book-expert/logger"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/blank"
	"github.com/book-expert/album-ingest-service/internal/collect"
	"github.com/book-expert/album-ingest-service/internal/ingestevents"
	"github.com/book-expert/album-ingest-service/internal/pipeline"
	"github.com/book-expert/album-ingest-service/internal/specmatch"
)

// ErrConfigURLNotSet is returned when the configuration URL environment
// variable is missing.
var ErrConfigURLNotSet = errors.New("ALBUM_INGEST_CONFIG_URL is not set")

// Config represents the overall configuration structure for the
// album-ingest-service.
type Config struct {
	NATS    NATSConfig          `toml:"nats"`
	Paths   PathsConfig         `toml:"paths"`
	Ingest  IngestConfig        `toml:"ingest"`
	Rates   album.Rates         `toml:"rates"`
	Catalog []album.StandardSize `toml:"catalog"`
}

// PathsConfig holds common path configurations.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// NATSConfig holds NATS-specific configuration for the album-ingest-service.
type NATSConfig struct {
	URL                      string `toml:"url"`
	AlbumStreamName          string `toml:"album_stream_name"`
	AlbumConsumerName        string `toml:"album_consumer_name"`
	AlbumDroppedSubject      string `toml:"album_dropped_subject"`
	QuoteStreamName          string `toml:"quote_stream_name"`
	AlbumQuotedSubject       string `toml:"album_quoted_subject"`
	PreviewCreatedSubject    string `toml:"preview_created_subject"`
	PreviewObjectStoreBucket string `toml:"preview_object_store_bucket"`
}

// IngestConfig holds pipeline tuning values.
type IngestConfig struct {
	Workers    int     `toml:"workers"`
	MaxDepth   int     `toml:"max_depth"`
	AssumedDPI float64 `toml:"assumed_dpi"`
}

// job represents the context for processing a single message.
type job struct {
	msg          jetstream.Msg
	jetStream    jetstream.JetStream
	previewStore jetstream.ObjectStore
	cfg          *Config
	appLogger    *logger.Logger
	event        *ingestevents.AlbumDroppedEvent
	header       *events.EventHeader
}

const (
	natsFetchTimeout = 5 * time.Second
	ackWait          = 5 * time.Minute
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	runErr := run(ctx)
	if runErr != nil {
		log.Printf("Fatal application error: %v", runErr)
		os.Exit(1)
	}

	log.Println("Application shut down gracefully.")
}

// run initializes all components and starts the message processing loop.
func run(ctx context.Context) error {
	cfg, appLogger, setupErr := setupConfigAndLogger()
	if setupErr != nil {
		return setupErr
	}
	defer func() {
		if closeErr := appLogger.Close(); closeErr != nil {
			log.Printf("Warning: failed to close app logger: %v", closeErr)
		}
	}()

	natsConnection, connErr := nats.Connect(cfg.NATS.URL)
	if connErr != nil {
		return fmt.Errorf("failed to connect to NATS: %w", connErr)
	}
	defer natsConnection.Close()
	appLogger.Info("Connected to NATS server at %s", natsConnection.ConnectedUrl())

	jetStream, jsErr := jetstream.New(natsConnection)
	if jsErr != nil {
		return fmt.Errorf("failed to create JetStream context: %w", jsErr)
	}

	jsSetupErr := setupJetStream(ctx, jetStream, cfg)
	if jsSetupErr != nil {
		return fmt.Errorf("failed to set up JetStream resources: %w", jsSetupErr)
	}

	consumer, consumerErr := jetStream.Consumer(
		ctx,
		cfg.NATS.AlbumStreamName,
		cfg.NATS.AlbumConsumerName,
	)
	if consumerErr != nil {
		return fmt.Errorf("failed to get consumer: %w", consumerErr)
	}

	appLogger.Info("Worker is running, listening for jobs on '%s'...", cfg.NATS.AlbumDroppedSubject)

	return processMessages(ctx, consumer, jetStream, cfg, appLogger)
}

// setupConfigAndLogger loads configuration and sets up the main application
// logger.
func setupConfigAndLogger() (*Config, *logger.Logger, error) {
	configURL := os.Getenv("ALBUM_INGEST_CONFIG_URL")
	if configURL == "" {
		return nil, nil, ErrConfigURLNotSet
	}

	var cfg Config

	tempLogger, tempLoggerErr := logger.New(os.TempDir(), "album-ingest-bootstrap.log")
	if tempLoggerErr != nil {
		return nil, nil, fmt.Errorf("failed to create bootstrap logger: %w", tempLoggerErr)
	}
	defer func() {
		if closeErr := tempLogger.Close(); closeErr != nil {
			log.Printf("Warning: failed to close temp logger: %v", closeErr)
		}
	}()

	loadErr := configurator.LoadFromURL(configURL, &cfg, tempLogger)
	if loadErr != nil {
		return nil, nil, fmt.Errorf(
			"failed to load configuration from URL %s: %w",
			configURL,
			loadErr,
		)
	}
	log.Printf("Configuration loaded from %s", configURL)

	appLogger, loggerErr := logger.New(cfg.Paths.BaseLogsDir, "album-ingest-service.log")
	if loggerErr != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", loggerErr)
	}

	return &cfg, appLogger, nil
}

// setupJetStream ensures all required NATS streams and object stores exist.
func setupJetStream(ctx context.Context, jetStream jetstream.JetStream, cfg *Config) error {
	streamCfg := newStreamConfig(cfg.NATS.AlbumStreamName, cfg.NATS.AlbumDroppedSubject)

	_, streamErr := jetStream.CreateStream(ctx, *streamCfg)
	if streamErr != nil && !errors.Is(streamErr, jetstream.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("failed to create album stream: %w", streamErr)
	}

	stream, streamErr := jetStream.Stream(ctx, cfg.NATS.AlbumStreamName)
	if streamErr != nil {
		return fmt.Errorf("failed to get album stream handle: %w", streamErr)
	}

	_, consumerErr := stream.CreateOrUpdateConsumer(ctx, *newConsumerConfig(cfg))
	if consumerErr != nil {
		return fmt.Errorf("failed to create album consumer: %w", consumerErr)
	}

	quoteStreamCfg := newStreamConfig(
		cfg.NATS.QuoteStreamName,
		cfg.NATS.AlbumQuotedSubject,
		cfg.NATS.PreviewCreatedSubject,
	)

	_, quoteStreamErr := jetStream.CreateStream(ctx, *quoteStreamCfg)
	if quoteStreamErr != nil && !errors.Is(quoteStreamErr, jetstream.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("failed to create quote stream: %w", quoteStreamErr)
	}

	objStoreCfg := newObjectStoreConfig(cfg.NATS.PreviewObjectStoreBucket)

	_, objStoreErr := jetStream.CreateObjectStore(ctx, *objStoreCfg)
	if objStoreErr != nil && !errors.Is(objStoreErr, jetstream.ErrBucketExists) {
		return fmt.Errorf(
			"failed to create object store '%s': %w",
			cfg.NATS.PreviewObjectStoreBucket,
			objStoreErr,
		)
	}

	return nil
}

func newStreamConfig(name string, subjects ...string) *jetstream.StreamConfig {
	return &jetstream.StreamConfig{
		Name:                   name,
		Description:            "",
		Subjects:               subjects,
		Retention:              jetstream.WorkQueuePolicy,
		MaxConsumers:           -1,
		MaxMsgs:                -1,
		MaxBytes:               -1,
		Discard:                jetstream.DiscardOld,
		DiscardNewPerSubject:   false,
		MaxAge:                 0,
		MaxMsgsPerSubject:      -1,
		MaxMsgSize:             -1,
		Storage:                jetstream.FileStorage,
		Replicas:               1,
		NoAck:                  false,
		Duplicates:             0,
		Placement:              nil,
		Mirror:                 nil,
		Sources:                nil,
		Sealed:                 false,
		DenyDelete:             false,
		DenyPurge:              false,
		AllowRollup:            false,
		Compression:            jetstream.NoCompression,
		FirstSeq:               0,
		SubjectTransform:       nil,
		RePublish:              nil,
		AllowDirect:            false,
		MirrorDirect:           false,
		ConsumerLimits:         jetstream.StreamConsumerLimits{},
		Metadata:               nil,
		Template:               "",
		AllowMsgTTL:            false,
		SubjectDeleteMarkerTTL: 0,
	}
}

func newConsumerConfig(cfg *Config) *jetstream.ConsumerConfig {
	return &jetstream.ConsumerConfig{
		Durable:            cfg.NATS.AlbumConsumerName,
		Name:               "",
		Description:        "",
		FilterSubject:      cfg.NATS.AlbumDroppedSubject,
		AckPolicy:          jetstream.AckExplicitPolicy,
		AckWait:            ackWait,
		MaxDeliver:         -1,
		DeliverPolicy:      jetstream.DeliverAllPolicy,
		OptStartSeq:        0,
		OptStartTime:       nil,
		BackOff:            nil,
		ReplayPolicy:       jetstream.ReplayInstantPolicy,
		RateLimit:          0,
		SampleFrequency:    "",
		MaxWaiting:         0,
		MaxAckPending:      -1,
		HeadersOnly:        false,
		MaxRequestBatch:    0,
		MaxRequestExpires:  0,
		MaxRequestMaxBytes: 0,
		InactiveThreshold:  0,
		Replicas:           0,
		MemoryStorage:      false,
		FilterSubjects:     nil,
		Metadata:           nil,
		PauseUntil:         nil,
		PriorityPolicy:     0,
		PinnedTTL:          0,
		PriorityGroups:     nil,
		DeliverSubject:     "",
		DeliverGroup:       "",
		FlowControl:        false,
		IdleHeartbeat:      0,
	}
}

func newObjectStoreConfig(bucket string) *jetstream.ObjectStoreConfig {
	return &jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: "",
		TTL:         0,
		MaxBytes:    -1,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Compression: false,
		Metadata:    nil,
	}
}

// processMessages implements the core worker loop.
func processMessages(
	ctx context.Context,
	consumer jetstream.Consumer,
	jetStream jetstream.JetStream,
	cfg *Config,
	appLogger *logger.Logger,
) error {
	previewStore, storeErr := jetStream.ObjectStore(ctx, cfg.NATS.PreviewObjectStoreBucket)
	if storeErr != nil {
		return fmt.Errorf("failed to bind to preview object store: %w", storeErr)
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("context error in message loop: %w", ctxErr)
		}

		batch, fetchErr := consumer.Fetch(1, jetstream.FetchMaxWait(natsFetchTimeout))
		if fetchErr != nil {
			if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, nats.ErrTimeout) {
				continue
			}

			appLogger.Error("Error fetching messages: %v", fetchErr)

			continue
		}

		for msg := range batch.Messages() {
			handleMessage(ctx, msg, jetStream, previewStore, cfg, appLogger)
		}

		if batchErr := batch.Error(); batchErr != nil {
			appLogger.Error("Error during message batch processing: %v", batchErr)
		}
	}
}

// handleMessage processes a single message.
func handleMessage(
	ctx context.Context, msg jetstream.Msg, jetStream jetstream.JetStream,
	previewStore jetstream.ObjectStore, cfg *Config, appLogger *logger.Logger,
) {
	job, jobErr := newJob(msg, jetStream, previewStore, cfg, appLogger)
	if jobErr != nil {
		appLogger.Error("Failed to create job: %v", jobErr)

		return
	}

	job.run(ctx)
}

// newJob creates a new job handler.
func newJob(
	msg jetstream.Msg, jetStream jetstream.JetStream,
	previewStore jetstream.ObjectStore, cfg *Config, appLogger *logger.Logger,
) (*job, error) {
	var event ingestevents.AlbumDroppedEvent

	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AlbumDroppedEvent: %w", err)
	}

	return &job{
		msg:          msg,
		jetStream:    jetStream,
		previewStore: previewStore,
		cfg:          cfg,
		appLogger:    appLogger,
		event:        &event,
		header:       &event.Header,
	}, nil
}

// run executes the full lifecycle of a job: ingest the dropped tree, upload
// previews, and publish one quote per folder.
func (j *job) run(ctx context.Context) {
	j.appLogger.Info(
		"Received job for WorkflowID [%s]: ingesting album tree '%s'",
		j.header.WorkflowID,
		j.event.Path,
	)

	if progErr := j.msg.InProgress(); progErr != nil {
		j.appLogger.Warn("Failed to send InProgress update: %v", progErr)
	}

	folders, ingestErr := j.ingest(ctx)
	if ingestErr != nil {
		if errors.Is(ingestErr, collect.ErrNoImagesFound) {
			// Nothing to retry: the dropped tree has no usable images.
			j.term(ingestErr)

			return
		}

		j.nak(ingestErr)

		return
	}

	for _, folder := range folders {
		j.publishPreviews(ctx, folder)

		if publishErr := j.publishQuote(ctx, folder); publishErr != nil {
			j.appLogger.Error(
				"Job [%s]: Failed to publish quote for folder '%s': %v",
				j.header.WorkflowID, folder.Title, publishErr,
			)
		}
	}

	j.ack()
}

// ingest runs the pipeline over the dropped tree.
func (j *job) ingest(ctx context.Context) ([]*album.UploadedFolder, error) {
	layoutChoice, bindingChoice := j.event.Choices()

	opts := &pipeline.Options{
		ProgressBarOutput:  &bytes.Buffer{},
		Catalog:            j.cfg.Catalog,
		Rates:              j.cfg.Rates,
		LayoutDefault:      layoutChoice,
		BindingDefault:     bindingChoice,
		Workers:            j.cfg.Ingest.Workers,
		MaxDepth:           j.cfg.Ingest.MaxDepth,
		AssumedDPI:         j.cfg.Ingest.AssumedDPI,
		HalfWidthTolerance: 0,
		BlankThresholds:    blank.Thresholds{Dark: 0, Light: 0, SampleSize: 0},
		MatchTolerances:    specmatch.Tolerances{Snap: 0, Exact: 0, Ratio: 0},
	}
	processor := pipeline.NewProcessor(opts, j.appLogger)

	folders, processErr := processor.ProcessRoot(ctx, j.event.Path)
	if processErr != nil {
		return nil, fmt.Errorf("failed to ingest album tree: %w", processErr)
	}

	return folders, nil
}

// publishPreviews uploads every file preview to the object store and
// publishes a PreviewCreatedEvent for each.
func (j *job) publishPreviews(ctx context.Context, folder *album.UploadedFolder) {
	for _, file := range folder.Files {
		if len(file.Preview) == 0 {
			continue
		}

		previewKey := fmt.Sprintf(
			"%s/%s/%s/page_%04d.jpg",
			j.header.TenantID, j.header.WorkflowID, folder.ID, file.PageNumber,
		)

		meta := jetstream.ObjectMeta{
			Name:        previewKey,
			Description: "",
			Headers:     nil,
			Metadata:    nil,
		}

		_, putErr := j.previewStore.Put(ctx, meta, bytes.NewReader(file.Preview))
		if putErr != nil {
			j.appLogger.Error(
				"Job [%s]: Failed to upload preview '%s': %v",
				j.header.WorkflowID, previewKey, putErr,
			)

			continue
		}

		if eventErr := j.publishPreviewEvent(ctx, previewKey, folder, file); eventErr != nil {
			j.appLogger.Error(
				"Job [%s]: Failed to publish preview event for '%s': %v",
				j.header.WorkflowID, previewKey, eventErr,
			)
		}
	}
}

// publishPreviewEvent marshals and publishes a PreviewCreatedEvent.
func (j *job) publishPreviewEvent(
	ctx context.Context,
	previewKey string,
	folder *album.UploadedFolder,
	file *album.UploadedFile,
) error {
	event := ingestevents.PreviewCreatedEvent{
		Header:     j.newHeader(),
		PreviewKey: previewKey,
		FolderID:   folder.ID,
		FileID:     file.ID,
		FileName:   file.Name,
		PageNumber: file.PageNumber,
	}

	eventJSON, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal PreviewCreatedEvent: %w", marshalErr)
	}

	_, pubErr := j.jetStream.Publish(ctx, j.cfg.NATS.PreviewCreatedSubject, eventJSON)
	if pubErr != nil {
		return fmt.Errorf("failed to publish PreviewCreatedEvent: %w", pubErr)
	}

	return nil
}

// publishQuote marshals and publishes an AlbumQuotedEvent for one folder.
func (j *job) publishQuote(ctx context.Context, folder *album.UploadedFolder) error {
	event := ingestevents.AlbumQuotedEvent{
		Header:      j.newHeader(),
		FolderID:    folder.ID,
		Title:       folder.Title,
		Path:        folder.Path,
		PageCount:   folder.PageCount,
		Layout:      folder.Layout,
		Binding:     folder.Binding,
		AutoBinding: folder.AutoBindingDetected,
		Status:      folder.Status,
		AlbumWidth:  folder.AlbumWidth,
		AlbumHeight: folder.AlbumHeight,
		SizeLabel:   folder.SizeLabel,
		Selectable:  folder.Selectable(),
		Price:       folder.Price,
	}

	eventJSON, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal AlbumQuotedEvent: %w", marshalErr)
	}

	_, pubErr := j.jetStream.Publish(ctx, j.cfg.NATS.AlbumQuotedSubject, eventJSON)
	if pubErr != nil {
		return fmt.Errorf("failed to publish AlbumQuotedEvent: %w", pubErr)
	}

	j.appLogger.Info(
		"Job [%s]: Published quote for folder '%s' (%d pages, %s)",
		j.header.WorkflowID, folder.Title, folder.PageCount, folder.Status,
	)

	return nil
}

func (j *job) newHeader() events.EventHeader {
	return events.EventHeader{
		WorkflowID: j.header.WorkflowID,
		UserID:     j.header.UserID,
		TenantID:   j.header.TenantID,
		EventID:    uuid.New().String(),
		Timestamp:  time.Now(),
	}
}

func (j *job) ack() {
	if err := j.msg.Ack(); err != nil {
		j.appLogger.Error("Job [%s]: Failed to acknowledge message: %v", j.header.WorkflowID, err)
	} else {
		j.appLogger.Success("Job [%s]: Processing complete. Acknowledged.", j.header.WorkflowID)
	}
}

func (j *job) nak(reason error) {
	j.appLogger.Error("NAK'ing message for job [%s]: %v", j.header.WorkflowID, reason)

	if err := j.msg.Nak(); err != nil {
		j.appLogger.Error("Failed to NAK message: %v", err)
	}
}

func (j *job) term(reason error) {
	j.appLogger.Error("Terminating message for job [%s]: %v", j.header.WorkflowID, reason)

	if err := j.msg.Term(); err != nil {
		j.appLogger.Error("Failed to TERM message: %v", err)
	}
}
