// Package google writes the monthly budget report to a Google Sheets
// spreadsheet using a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/config"
	"bilancio/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ export.ReportWriter = (*Client)(nil)

// NewFromConfig creates a Sheets client from the export configuration,
// resolving credentials from the inline JSON or the credentials file.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.ExportEnabled() {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// Write replaces the sheet contents with the report: a header block, one
// row per category, and a totals row. Amounts are written as decimal
// units, not cents.
func (c *Client) Write(ctx context.Context, report export.MonthlyReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:F", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	values := [][]any{
		{"Period", report.Period.Start.Format("2006-01-02"), report.Period.End.Format("2006-01-02"), "", "Health", report.HealthScore},
		{"Category", "Budget", "Spent", "Used %", "Level", ""},
	}
	for _, row := range report.Rows {
		budget := any("")
		used := any("")
		level := any("")
		if row.HasBudget {
			budget = float64(row.Budget.Cents) / 100.0
			used = row.PercentUsed
			level = string(row.Level)
		}
		values = append(values, []any{
			row.Category,
			budget,
			float64(row.Spent.Cents) / 100.0,
			used,
			level,
			"",
		})
	}
	values = append(values, []any{
		"Total",
		float64(report.TotalBudget.Cents) / 100.0,
		float64(report.TotalSpent.Cents) / 100.0,
		"", "", "",
	})

	dataRange := fmt.Sprintf("%s!A1:F%d", c.sheetName, len(values))
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report to sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Monthly report exported",
		"sheet", c.sheetName,
		"rows", len(report.Rows),
		"range", dataRange)

	return dataRange, nil
}
