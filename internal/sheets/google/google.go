package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"budgeter/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const valueInput = "USER_ENTERED"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ sheets.Exporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		return nil, errors.New("missing GOOGLE_SHEET_NAME")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, source, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_source", source,
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials() ([]byte, string, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), "inline", nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, "", errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read service account file: %w", err)
	}
	return data, path, nil
}

// AppendRows appends below the last row of the sheet.
func (c *Client) AppendRows(ctx context.Context, rows []sheets.Row) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(rows) == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, valueRange(nil, rows)).
		ValueInputOption(valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheetName, err)
	}
	return nil
}

// ReplaceRows clears the sheet and writes the header and rows from A1.
func (c *Client) ReplaceRows(ctx context.Context, rows []sheets.Row) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	all := fmt.Sprintf("%s!A:E", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", c.sheetName, err)
	}

	rng := fmt.Sprintf("%s!A1", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, valueRange(sheets.Header, rows)).
		ValueInputOption(valueInput).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Replaced sheet contents", "sheet", c.sheetName, "rows", len(rows))
	return nil
}

// valueRange lays out an optional header followed by rows.
func valueRange(header []string, rows []sheets.Row) *gsheet.ValueRange {
	values := make([][]any, 0, len(rows)+1)
	if len(header) > 0 {
		h := make([]any, len(header))
		for i, v := range header {
			h[i] = v
		}
		values = append(values, h)
	}
	for _, r := range rows {
		values = append(values, r.Values())
	}
	return &gsheet.ValueRange{Values: values}
}
