package ledger

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sgarlapa/expense-ledger-bot/internal/expense"
)

// ExcelLedger appends rows to a local xlsx workbook, for deployments without
// a shared spreadsheet. Writes are serialized: excelize rewrites the file on
// save, so concurrent appends must not interleave.
type ExcelLedger struct {
	mu     sync.Mutex
	path   string
	sheet  string
	logger *zap.Logger
}

// NewExcelLedger opens the workbook at path, creating it with a header row
// when it does not exist yet.
func NewExcelLedger(path, sheet string, logger *zap.Logger) (*ExcelLedger, error) {
	if sheet == "" {
		sheet = "Expenses"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		defer f.Close()
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("failed to name ledger sheet: %w", err)
		}
		header := Header
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, fmt.Errorf("failed to write ledger header: %w", err)
		}
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("failed to create ledger workbook: %w", err)
		}
		logger.Info("Created ledger workbook", zap.String("path", path))
	}

	return &ExcelLedger{
		path:   path,
		sheet:  sheet,
		logger: logger,
	}, nil
}

// Append writes one record to the first free row of the sheet.
func (l *ExcelLedger) Append(_ context.Context, rec expense.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return fmt.Errorf("failed to open ledger workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(l.sheet)
	if err != nil {
		return fmt.Errorf("failed to read ledger sheet: %w", err)
	}

	row := rec.Row()
	cell := fmt.Sprintf("A%d", len(rows)+1)
	if err := f.SetSheetRow(l.sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save ledger workbook: %w", err)
	}

	l.logger.Debug("Row appended to workbook",
		zap.String("path", l.path),
		zap.String("cell", cell))

	return nil
}
