package etl

import (
	"context"
	"fmt"

	analyticsreporting "google.golang.org/api/analyticsreporting/v4"

	"github.com/BartekS5/gaexport/internal/config"
	"github.com/BartekS5/gaexport/pkg/logger"
	"github.com/BartekS5/gaexport/pkg/models"
)

const (
	usersMetric        = "ga:users"
	samplingLevelLarge = "LARGE"
	maxPageSize        = 100000
)

// reportsAPI is the slice of the Reporting API service the extractor needs.
type reportsAPI interface {
	BatchGet(ctx context.Context, req *analyticsreporting.GetReportsRequest) (*analyticsreporting.GetReportsResponse, error)
}

type serviceReports struct {
	svc *analyticsreporting.Service
}

func (s serviceReports) BatchGet(ctx context.Context, req *analyticsreporting.GetReportsRequest) (*analyticsreporting.GetReportsResponse, error) {
	return s.svc.Reports.BatchGet(req).Context(ctx).Do()
}

// AnalyticsExtractor reads (client, application) pairs from the Analytics
// Reporting API v4.
type AnalyticsExtractor struct {
	api      reportsAPI
	Config   config.GoogleAnalytics
	PageSize int64
}

func NewAnalyticsExtractor(svc *analyticsreporting.Service, cfg config.GoogleAnalytics) *AnalyticsExtractor {
	return &AnalyticsExtractor{api: serviceReports{svc: svc}, Config: cfg, PageSize: maxPageSize}
}

// Request builds the batched report request for one page.
func (a *AnalyticsExtractor) Request(pageToken string) *analyticsreporting.GetReportsRequest {
	return &analyticsreporting.GetReportsRequest{
		ReportRequests: []*analyticsreporting.ReportRequest{{
			ViewId: a.Config.ViewID,
			DateRanges: []*analyticsreporting.DateRange{{
				StartDate: a.Config.StartDate,
				EndDate:   a.Config.EndDate,
			}},
			Metrics: []*analyticsreporting.Metric{{Expression: usersMetric}},
			Dimensions: []*analyticsreporting.Dimension{
				{Name: a.Config.AppIDDimension},
				{Name: a.Config.ClientIDDimension},
			},
			SamplingLevel: samplingLevelLarge,
			PageSize:      a.PageSize,
			PageToken:     pageToken,
		}},
	}
}

// Extract pages through the report until no next page token is returned.
func (a *AnalyticsExtractor) Extract(ctx context.Context) ([]models.Record, error) {
	var (
		records []models.Record
		token   string
		page    int
	)
	for {
		page++
		resp, err := a.api.BatchGet(ctx, a.Request(token))
		if err != nil {
			return nil, fmt.Errorf("reports batchGet (page %d): %w", page, err)
		}
		batch := FlattenReports(resp, a.Config.ClientIDDimension)
		records = append(records, batch...)
		logger.Debugf("Reporting API page %d: %d rows", page, len(batch))

		next := nextPageToken(resp)
		if next == "" {
			break
		}
		if next == token {
			return nil, fmt.Errorf("reports batchGet returned the same page token %q twice", next)
		}
		token = next
	}
	logger.Infof("Reporting API returned %d rows for view %s", len(records), a.Config.ViewID)
	return records, nil
}

// FlattenReports zips each row's dimension values against its report's header.
// The value under clientIDDimension becomes ClientID, the other ApplicationID.
// Every report in the response contributes rows.
func FlattenReports(resp *analyticsreporting.GetReportsResponse, clientIDDimension string) []models.Record {
	if resp == nil {
		return nil
	}
	var out []models.Record
	for _, report := range resp.Reports {
		if report == nil || report.Data == nil {
			continue
		}
		var headers []string
		if report.ColumnHeader != nil {
			headers = report.ColumnHeader.Dimensions
		}
		for _, row := range report.Data.Rows {
			if row == nil {
				continue
			}
			var rec models.Record
			n := min(len(headers), len(row.Dimensions))
			for i := 0; i < n; i++ {
				if headers[i] == clientIDDimension {
					rec.ClientID = row.Dimensions[i]
				} else {
					rec.ApplicationID = row.Dimensions[i]
				}
			}
			out = append(out, rec)
		}
	}
	return out
}

func nextPageToken(resp *analyticsreporting.GetReportsResponse) string {
	if resp == nil {
		return ""
	}
	for _, r := range resp.Reports {
		if r != nil && r.NextPageToken != "" {
			return r.NextPageToken
		}
	}
	return ""
}
