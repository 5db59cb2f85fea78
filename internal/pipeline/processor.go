package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sgarlapa/expense-ledger-bot/internal/ledger"
	"github.com/sgarlapa/expense-ledger-bot/internal/slack"
)

// Processor runs the full pipeline for one inbound event and hands the
// resulting records to the ledger.
type Processor struct {
	normalizer *Normalizer
	ledger     ledger.Ledger
	logger     *zap.Logger
}

// NewProcessor creates a processor over a normalizer and a ledger backend.
func NewProcessor(normalizer *Normalizer, ledger ledger.Ledger, logger *zap.Logger) *Processor {
	return &Processor{
		normalizer: normalizer,
		ledger:     ledger,
		logger:     logger,
	}
}

// Process normalizes the event and appends each record. A failed append is
// logged per record and does not stop the remaining records in the batch.
func (p *Processor) Process(ctx context.Context, event slack.InboundEvent) {
	for _, rec := range p.normalizer.Normalize(ctx, event) {
		if err := p.ledger.Append(ctx, rec); err != nil {
			p.logger.Error("Failed to append record to ledger",
				zap.String("event_id", event.EventID),
				zap.String("original_text", rec.OriginalText),
				zap.Error(err))
			continue
		}
		p.logger.Info("Record appended",
			zap.String("description", rec.Description),
			zap.String("amount", rec.Amount),
			zap.String("currency", rec.Currency))
	}
}
