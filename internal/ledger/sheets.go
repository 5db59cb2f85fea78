package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sgarlapa/expense-ledger-bot/internal/expense"
)

// SheetsLedger appends rows to a Google Sheets spreadsheet.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	rangeName     string
	logger        *zap.Logger
}

// NewSheetsLedger creates a Sheets-backed ledger. rangeName names the sheet
// the append targets, e.g. "Expenses".
func NewSheetsLedger(ctx context.Context, spreadsheetID, rangeName string, logger *zap.Logger, opts ...option.ClientOption) (*SheetsLedger, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsLedger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		rangeName:     rangeName,
		logger:        logger,
	}, nil
}

// Append appends one record as a USER_ENTERED row.
func (l *SheetsLedger) Append(ctx context.Context, rec expense.Record) error {
	values := &sheets.ValueRange{
		Values: [][]interface{}{rec.Row()},
	}

	_, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, l.rangeName, values).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to sheet: %w", err)
	}

	l.logger.Debug("Row appended to sheet",
		zap.String("spreadsheet_id", l.spreadsheetID),
		zap.String("description", rec.Description))

	return nil
}
