package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
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

type Params struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

type Results struct {
	Output any `json:"output"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var storeConfig recipebox.StoreConfig
		if err := envdecode.Decode(&storeConfig); err != nil {
			return Results{}, fmt.Errorf("failed to decode store config: %w", err)
		}

		var sourceConfig recipebox.SourceConfig
		if err := envdecode.Decode(&sourceConfig); err != nil {
			return Results{}, fmt.Errorf("failed to decode source config: %w", err)
		}

		var appConfig recipebox.AppConfig
		if err := envdecode.Decode(&appConfig); err != nil {
			return Results{}, fmt.Errorf("failed to decode app config: %w", err)
		}

		if params.Tool == "" {
			return Results{}, fmt.Errorf("missing tool name")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3Client := s3.NewFromConfig(awsCfg)

		store, err := storage.NewStore(storeConfig, s3Client)
		if err != nil {
			slog.Error("SETUP: Failed to create store", "error", err)
			return Results{}, err
		}

		var opts source.Options
		if sourceConfig.FixtureS3Key != "" {
			opts.FixtureBlob = storage.NewS3Blob(s3Client, storeConfig.S3Bucket, sourceConfig.FixtureS3Key)
		}
		src, err := source.New(sourceConfig, opts)
		if err != nil {
			slog.Error("SETUP: Failed to create recipe source", "error", err)
			return Results{}, err
		}

		tracerProvider, meterProvider, otelShutdown, err := recipebox.InitOtel(ctx, appConfig.OtelEnabled)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		src = source.NewInstrumented(src,
			tracerProvider.Tracer(recipebox.TracerNameSource),
			meterProvider.Meter(recipebox.TracerNameSource))

		st := state.New(store, state.WithMeter(meterProvider.Meter(recipebox.TracerNameState)))
		st.Init(ctx)

		eventLogger := recipebox.NewStdoutEventLogger()
		defer st.Subscribe(func(event recipebox.ChangeEvent) {
			if err := eventLogger.LogEvent(event); err != nil {
				slog.Warn("STATE: Failed to log change event", "kind", event.Kind, "error", err)
			}
		})()

		var registryOpts []tools.RegistryOption
		if appConfig.SlackWebhookURL != "" {
			registryOpts = append(registryOpts, tools.WithSharer(slack.NewClient(appConfig.SlackWebhookURL, http.DefaultClient), appConfig.SlackChannel))
		}
		registry, err := tools.NewRegistry(st, src, registryOpts...)
		if err != nil {
			slog.Error("SETUP: Failed to create tool registry", "error", err)
			return Results{}, err
		}
		slog.Info("SETUP: Registry initialized", "source", sourceConfig.Kind, "store", storeConfig.Backend)

		tool, err := registry.GetTool(params.Tool)
		if err != nil {
			return Results{}, err
		}

		tracer := tracerProvider.Tracer(recipebox.TracerNameLambda)
		ctx, span := tracer.Start(ctx, "tool."+params.Tool, trace.WithAttributes(
			attribute.String("tool.name", params.Tool),
		))
		defer span.End()

		input := params.Input
		if input == nil {
			input = map[string]any{}
		}
		output, err := tool.Run(ctx, input)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("RESULT: Error running tool", "tool", params.Tool, "error", err)
			return Results{}, err
		}
		span.SetStatus(codes.Ok, "")

		return Results{Output: output}, nil
	}

	lambda.Start(fn)
}
