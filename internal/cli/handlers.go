package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/BartekS5/gaexport/internal/auth"
	"github.com/BartekS5/gaexport/internal/config"
	"github.com/BartekS5/gaexport/internal/etl"
	"github.com/BartekS5/gaexport/pkg/database"
	"github.com/BartekS5/gaexport/pkg/logger"
)

func runExport(ctx context.Context, opts *ExportOptions) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	settings := config.LoadSettings()
	if err := logger.Init(settings.LogLevel, settings.LogFile); err != nil {
		return etl.ConfigError("init logger", err)
	}
	defer logger.Close()

	runID := uuid.NewString()
	logger.Infof("gaexport start. run_id=%s", runID)
	defer func() {
		if err == nil {
			logger.Infof("gaexport end. run_id=%s", runID)
		}
	}()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return etl.ConfigError("load config", err)
	}
	if err := settings.RequireMirrorConnections(cfg.Mirrors); err != nil {
		return etl.ConfigError("mirror settings", err)
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	extractor, closeSource, err := newExtractor(ctx, cfg)
	if err != nil {
		return etl.SourceError("connect source", err)
	}
	closers = append(closers, closeSource)

	var sinks []etl.Sink
	if !opts.DryRun {
		var closeSinks func()
		sinks, closeSinks, err = newSinks(ctx, cfg, settings, runID)
		if err != nil {
			return etl.SinkError("connect sinks", err)
		}
		closers = append(closers, closeSinks)
	}

	outputPath := filepath.Join(opts.OutputDir, opts.FileName)
	pipeline := etl.NewPipeline(extractor, etl.NewTransformer(cfg.TID()), outputPath, sinks, opts.DryRun)

	logger.Infof("Starting export from data source %s into %s.%s", cfg.DataSource, cfg.GoogleBigQuery.DatasetID, cfg.GoogleBigQuery.TableID)
	return pipeline.Run(ctx)
}

func newExtractor(ctx context.Context, cfg *config.Config) (etl.Extractor, func(), error) {
	switch cfg.DataSource {
	case config.SourceReportingAPI:
		authorizer, err := auth.NewAuthorizer(cfg.ClientSecretsPath(), cfg.TokenPath())
		if err != nil {
			return nil, nil, err
		}
		httpClient, err := authorizer.Client(ctx)
		if err != nil {
			return nil, nil, err
		}
		svc, err := database.ConnectAnalytics(ctx, httpClient)
		if err != nil {
			return nil, nil, err
		}
		return etl.NewAnalyticsExtractor(svc, cfg.GoogleAnalytics), func() {}, nil

	case config.SourceBigQueryExport:
		client, err := database.ConnectBigQuery(ctx, cfg.GoogleBigQueryExport.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return etl.NewBigQueryExtractor(client, cfg.GoogleBigQueryExport), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

// newSinks connects the BigQuery destination first, then any enabled mirrors.
func newSinks(ctx context.Context, cfg *config.Config, settings *config.Settings, runID string) ([]etl.Sink, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	bq, err := database.ConnectBigQuery(ctx, cfg.GoogleBigQuery.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() { bq.Close() })
	sinks := []etl.Sink{etl.NewBigQuerySink(bq, cfg.GoogleBigQuery, runID)}

	if cfg.Mirrors.SQLServer.Enabled {
		db, err := database.ConnectSQL(ctx, settings.SQLConnString)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		sinks = append(sinks, etl.NewSQLServerSink(db, cfg.Mirrors.SQLServer))
	}

	if cfg.Mirrors.MongoDB.Enabled {
		client, err := database.ConnectMongo(ctx, settings.MongoConnString)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { client.Disconnect(context.Background()) })
		sinks = append(sinks, etl.NewMongoSink(client, cfg.Mirrors.MongoDB))
	}

	return sinks, closeAll, nil
}
