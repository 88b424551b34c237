package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recipebox"
	"recipebox/slack"
	"recipebox/source"
	"recipebox/state"
	"recipebox/storage"
	"recipebox/tools"
)

// Usage: local [tool] [json-input]
//
//	local list
//	local recipe_search '{"query":"pasta"}'
//	local favorite_toggle '{"id":"7"}'
func main() {
	ctx := context.Background()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	var storeConfig recipebox.StoreConfig
	if err := envdecode.Decode(&storeConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var sourceConfig recipebox.SourceConfig
	if err := envdecode.Decode(&sourceConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var appConfig recipebox.AppConfig
	if err := envdecode.Decode(&appConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	if appConfig.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	tracerProvider, meterProvider, otelShutdown, err := recipebox.InitOtel(ctx, appConfig.OtelEnabled)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	var s3Client *s3.Client
	if storeConfig.Backend == "s3" || sourceConfig.FixtureS3Key != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to load AWS config", "error", err)
			return
		}
		s3Client = s3.NewFromConfig(awsCfg)
	}

	store, err := storage.NewStore(storeConfig, s3Client)
	if err != nil {
		slog.Error("SETUP: Failed to create store", "error", err)
		return
	}

	var opts source.Options
	if sourceConfig.FixtureS3Key != "" {
		opts.FixtureBlob = storage.NewS3Blob(s3Client, storeConfig.S3Bucket, sourceConfig.FixtureS3Key)
	}
	src, err := source.New(sourceConfig, opts)
	if err != nil {
		slog.Error("SETUP: Failed to create recipe source", "error", err)
		return
	}
	src = source.NewLatest(source.NewInstrumented(src,
		tracerProvider.Tracer(recipebox.TracerNameSource),
		meterProvider.Meter(recipebox.TracerNameSource)))
	slog.Info("SETUP: Recipe source ready", "source", sourceConfig.Kind, "store", storeConfig.Backend)

	st := state.New(store, state.WithMeter(meterProvider.Meter(recipebox.TracerNameState)))
	st.Init(ctx)

	toolName := argOr(1, "recipe_trending")

	logger, cleanup, err := newEventLogger(appConfig.EventLogDir, toolName)
	if err != nil {
		slog.Error("SETUP: Failed to create event logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush event log", "error", err)
		}
	}()
	unsubscribe := st.Subscribe(func(event recipebox.ChangeEvent) {
		if err := logger.LogEvent(event); err != nil {
			slog.Warn("STATE: Failed to log change event", "kind", event.Kind, "error", err)
		}
	})
	defer unsubscribe()

	var registryOpts []tools.RegistryOption
	if appConfig.SlackWebhookURL != "" {
		registryOpts = append(registryOpts, tools.WithSharer(slack.NewClient(appConfig.SlackWebhookURL, http.DefaultClient), appConfig.SlackChannel))
	}
	registry, err := tools.NewRegistry(st, src, registryOpts...)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return
	}

	if toolName == "list" {
		for _, t := range registry.GetTools() {
			fmt.Printf("%-20s %s\n", t.Name(), t.Description())
		}
		return
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(argOr(2, "{}")), &input); err != nil {
		slog.Error("SETUP: Tool input is not a JSON object", "error", err)
		return
	}

	tracer := tracerProvider.Tracer(recipebox.TracerNameLocal)
	ctx, span := tracer.Start(ctx, "tool."+toolName, trace.WithAttributes(
		attribute.String("tool.name", toolName),
		attribute.String("source.kind", sourceConfig.Kind),
		attribute.String("store.backend", storeConfig.Backend),
	))
	defer span.End()

	output, err := runTool(ctx, registry, toolName, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("FAILURE: Tool call failed", "tool", toolName, "error", err)
		return
	}
	span.SetStatus(codes.Ok, "")

	if appConfig.Debug {
		recipebox.Dump(output)
	}

	out, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		slog.Error("FAILURE: Failed to encode tool output", "error", err)
		return
	}
	fmt.Println(string(out))
}

func runTool(ctx context.Context, registry *tools.Registry, name string, input map[string]any) (map[string]any, error) {
	tool, err := registry.GetTool(name)
	if err != nil {
		return nil, err
	}
	return tool.Run(ctx, input)
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func newEventLogger(dir, session string) (recipebox.EventLogger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFilePath := recipebox.NewEventLogFilePath(dir, session)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := recipebox.NewFileEventLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
