package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	_ "github.com/microsoft/go-mssqldb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	analyticsreporting "google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/option"

	"github.com/BartekS5/gaexport/pkg/logger"
)

// ConnectBigQuery creates a BigQuery client using Application Default Credentials.
func ConnectBigQuery(ctx context.Context, projectID string) (*bigquery.Client, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error creating BigQuery client for project %s: %w", projectID, err)
	}
	return client, nil
}

// ConnectAnalytics creates a Reporting API v4 service on an authorized HTTP client.
func ConnectAnalytics(ctx context.Context, httpClient *http.Client) (*analyticsreporting.Service, error) {
	svc, err := analyticsreporting.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("error creating Analytics Reporting client: %w", err)
	}
	return svc, nil
}

const (
	sqlPingTimeout     = 5 * time.Second
	mongoConnectTimeout = 10 * time.Second
)

// ConnectSQL opens a SQL Server pool and pings it. ctx bounds the ping on
// top of sqlPingTimeout.
func ConnectSQL(ctx context.Context, connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return nil, fmt.Errorf("error opening SQL database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, sqlPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to SQL database (ping failed): %w", err)
	}

	logger.Infof("Connected to SQL Server mirror.")
	return db, nil
}

// ConnectMongo connects and pings the primary within mongoConnectTimeout
// of ctx. The client is disconnected again when the ping fails.
func ConnectMongo(ctx context.Context, connString string) (*mongo.Client, error) {
	connCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, fmt.Errorf("error creating MongoDB client: %w", err)
	}
	if err := client.Ping(connCtx, readpref.Primary()); err != nil {
		// connCtx may be the reason the ping failed.
		disconnectCtx, disconnectCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("error connecting to MongoDB (ping failed): %w", err)
	}

	logger.Infof("Connected to MongoDB mirror.")
	return client, nil
}
