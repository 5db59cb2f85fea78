package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sgarlapa/expense-ledger-bot/internal/expense"
	"github.com/sgarlapa/expense-ledger-bot/internal/slack"
)

// placeholderLine stands in for the message text when a blank message carries
// a file, so the attachment is not silently dropped from the ledger.
const placeholderLine = "No message"

// Deduplicator gates repeat deliveries of the same event.
type Deduplicator interface {
	IsDuplicate(eventID string) bool
}

// AttachmentRelay republishes an attachment and returns a shareable
// reference, or "" on failure.
type AttachmentRelay interface {
	Relay(ctx context.Context, att slack.Attachment) string
}

// Normalizer converts one inbound event into zero or more expense records.
type Normalizer struct {
	dedup     Deduplicator
	relay     AttachmentRelay
	extractor expense.Extractor
	now       func() time.Time
	logger    *zap.Logger
}

// NewNormalizer creates the orchestrator over its collaborators.
func NewNormalizer(dedup Deduplicator, relay AttachmentRelay, extractor expense.Extractor, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		dedup:     dedup,
		relay:     relay,
		extractor: extractor,
		now:       time.Now,
		logger:    logger,
	}
}

// Normalize runs the pipeline for one event. It emits one record per
// non-blank line (or one placeholder record when a blank message carries a
// file) and nothing for duplicates. The attachment is relayed at most once
// per event; its reference, possibly empty, is shared by every record.
func (n *Normalizer) Normalize(ctx context.Context, event slack.InboundEvent) []expense.Record {
	if n.dedup.IsDuplicate(event.EventID) {
		n.logger.Info("Skipping duplicate event",
			zap.String("event_id", event.EventID))
		return nil
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = n.now()
	}
	date := occurred.Format("2006-01-02")
	timestamp := occurred.Format("2006-01-02 15:04:05")

	reference := ""
	if len(event.Attachments) > 0 {
		// first attachment wins; the rest are ignored
		reference = n.relay.Relay(ctx, event.Attachments[0])
	}

	var records []expense.Record
	for line := range expense.Lines(event.RawText) {
		records = append(records, n.buildRecord(ctx, line, date, timestamp, event.Author, reference))
	}

	if len(records) == 0 && len(event.Attachments) > 0 {
		records = append(records, n.buildRecord(ctx, placeholderLine, date, timestamp, event.Author, reference))
	}

	n.logger.Info("Event normalized",
		zap.String("event_id", event.EventID),
		zap.String("author", event.Author),
		zap.Int("records", len(records)))

	return records
}

func (n *Normalizer) buildRecord(ctx context.Context, line, date, timestamp, author, reference string) expense.Record {
	parsed := n.extractor.Extract(ctx, line)
	return expense.Record{
		Date:                date,
		Timestamp:           timestamp,
		Amount:              parsed.Amount,
		Currency:            parsed.Currency,
		Description:         parsed.Description,
		Author:              author,
		AttachmentReference: reference,
		OriginalText:        line,
	}
}
