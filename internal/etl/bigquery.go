package etl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/BartekS5/gaexport/internal/config"
	"github.com/BartekS5/gaexport/pkg/logger"
	"github.com/BartekS5/gaexport/pkg/models"
	"github.com/BartekS5/gaexport/pkg/utils"
)

const exportQuery = "SELECT\n" +
	"  (SELECT MAX(IF(index = @app_index, value, NULL)) FROM UNNEST(unnest_hits.customDimensions)) AS application_id,\n" +
	"  (SELECT MAX(IF(index = @client_index, value, NULL)) FROM UNNEST(unnest_hits.customDimensions)) AS client_id\n" +
	"FROM `%s.%s.ga_sessions_*`\n" +
	"CROSS JOIN UNNEST(hits) AS unnest_hits\n" +
	"WHERE _TABLE_SUFFIX BETWEEN @day AND @day\n" +
	"  AND (SELECT MAX(IF(index = @app_index, value, NULL)) FROM UNNEST(unnest_hits.customDimensions)) IS NOT NULL\n" +
	"  AND (SELECT MAX(IF(index = @client_index, value, NULL)) FROM UNNEST(unnest_hits.customDimensions)) IS NOT NULL\n" +
	"GROUP BY application_id, client_id"

// BuildExportQuery returns the deduplicating query over the GA360 export
// tables of project.dataset. Indices and the day are bound as parameters.
func BuildExportQuery(project, dataset string) (string, error) {
	if !utils.IsProjectID(project) {
		return "", fmt.Errorf("invalid project id %q", project)
	}
	if !utils.IsDatasetID(dataset) {
		return "", fmt.Errorf("invalid dataset id %q", dataset)
	}
	return fmt.Sprintf(exportQuery, project, dataset), nil
}

// rowQuerier runs a query returning application_id/client_id rows.
type rowQuerier interface {
	QueryRecords(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]models.Record, error)
}

type exportRow struct {
	ApplicationID bigquery.NullString `bigquery:"application_id"`
	ClientID      bigquery.NullString `bigquery:"client_id"`
}

type clientQuerier struct {
	client *bigquery.Client
}

func (q clientQuerier) QueryRecords(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]models.Record, error) {
	query := q.client.Query(sql)
	query.Parameters = params

	it, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Record
	for {
		var row exportRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !row.ClientID.Valid || !row.ApplicationID.Valid {
			continue
		}
		out = append(out, models.Record{ClientID: row.ClientID.StringVal, ApplicationID: row.ApplicationID.StringVal})
	}
	return out, nil
}

// BigQueryExtractor reads yesterday's (client, application) pairs from the
// GA360 BigQuery export.
type BigQueryExtractor struct {
	querier rowQuerier
	Config  config.GoogleBigQueryExport

	now func() time.Time
}

func NewBigQueryExtractor(client *bigquery.Client, cfg config.GoogleBigQueryExport) *BigQueryExtractor {
	return &BigQueryExtractor{querier: clientQuerier{client: client}, Config: cfg, now: time.Now}
}

func (b *BigQueryExtractor) Extract(ctx context.Context) ([]models.Record, error) {
	sql, err := BuildExportQuery(b.Config.ProjectID, b.Config.DatasetID)
	if err != nil {
		return nil, err
	}
	day := utils.PartitionSuffix(b.now())
	params := []bigquery.QueryParameter{
		{Name: "app_index", Value: int64(b.Config.AppIDIndex)},
		{Name: "client_index", Value: int64(b.Config.ClientIDIndex)},
		{Name: "day", Value: day},
	}

	logger.Debugf("BigQuery export query for %s:\n%s", day, sql)
	records, err := b.querier.QueryRecords(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s for %s: %w", b.Config.ProjectID, b.Config.DatasetID, day, err)
	}
	logger.Infof("BigQuery export returned %d rows for %s", len(records), day)
	return records, nil
}

// OutputSchema is the fixed destination table schema.
func OutputSchema() bigquery.Schema {
	return bigquery.Schema{
		{Name: models.ColumnTID, Type: bigquery.StringFieldType, Required: true},
		{Name: models.ColumnClientID, Type: bigquery.StringFieldType, Required: true},
		{Name: models.ColumnApplicationID, Type: bigquery.StringFieldType, Required: true},
		{Name: models.ColumnCreatedAt, Type: bigquery.TimestampFieldType, Required: true},
	}
}

// BigQuerySink appends the run's file to a BigQuery table with a load job.
type BigQuerySink struct {
	Client    *bigquery.Client
	Dataset   string
	TableID   string
	JobPrefix string
}

func NewBigQuerySink(client *bigquery.Client, cfg config.GoogleBigQuery, runID string) *BigQuerySink {
	return &BigQuerySink{
		Client:    client,
		Dataset:   cfg.DatasetID,
		TableID:   cfg.TableID,
		JobPrefix: "gaexport_" + runID,
	}
}

func (s *BigQuerySink) Name() string  { return "bigquery" }
func (s *BigQuerySink) Table() string { return s.TableID }

func (s *BigQuerySink) TableNames(ctx context.Context) ([]string, error) {
	it := s.Client.Dataset(s.Dataset).Tables(ctx)
	var names []string
	for {
		t, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list tables in %s: %w", s.Dataset, err)
		}
		names = append(names, t.TableID)
	}
	return names, nil
}

func (s *BigQuerySink) CreateTable(ctx context.Context) error {
	meta := &bigquery.TableMetadata{Schema: OutputSchema()}
	if err := s.Client.Dataset(s.Dataset).Table(s.TableID).Create(ctx, meta); err != nil {
		return fmt.Errorf("create table %s.%s: %w", s.Dataset, s.TableID, err)
	}
	return nil
}

func (s *BigQuerySink) Load(ctx context.Context, batch Batch) error {
	f, err := os.Open(batch.FilePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", batch.FilePath, err)
	}
	defer f.Close()

	src := bigquery.NewReaderSource(f)
	src.SourceFormat = bigquery.CSV
	src.SkipLeadingRows = 1
	src.AllowQuotedNewlines = true

	loader := s.Client.Dataset(s.Dataset).Table(s.TableID).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateNever
	loader.JobID = s.JobPrefix
	loader.AddJobIDSuffix = true

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("start load job: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for load job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load job %s: %w", job.ID(), err)
	}
	logger.Infof("BigQuery load job %s appended %d rows to %s.%s", job.ID(), len(batch.Rows), s.Dataset, s.TableID)
	return nil
}
