package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/poultryops/internal/config"
)

var errEmptyRange = errors.New("sheet range must not be empty")

// Repository is the spreadsheet the batch snapshots are mirrored to.
type Repository interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository implements Repository with the Sheets v4 API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRows appends rows below the data in sheetRange in a single call.
func (r *GoogleSheetRepository) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append %d rows into range %s: %w", len(rows), sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, errEmptyRange
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// ColumnRange is the A1 range covering the first n columns of a tab, e.g.
// ColumnRange("Snapshots", 14) == "Snapshots!A:N".
func ColumnRange(tab string, n int) string {
	if n < 1 {
		n = 1
	}
	last := columnName(n)
	return fmt.Sprintf("%s!A:%s", quoteTab(tab), last)
}

// HeaderCell is the A1 cell of a tab, used to test whether a header exists.
func HeaderCell(tab string) string {
	return quoteTab(tab) + "!A1:A1"
}

// columnName converts a 1-based index to a column letter (1 -> A, 27 -> AA).
func columnName(n int) string {
	var name []byte
	for n > 0 {
		n--
		name = append([]byte{byte('A' + n%26)}, name...)
		n /= 26
	}
	return string(name)
}

func quoteTab(tab string) string {
	if strings.ContainsAny(tab, " '!") {
		return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	}
	return tab
}

var _ Repository = (*GoogleSheetRepository)(nil)
