package expense

// ParsedAmount is the result of extracting an amount from one expense line.
// Amount is a plain decimal string with thousands separators stripped, or ""
// when no amount could be found. Currency is a 3-letter code, falling back to
// the configured home currency. Description is never empty.
type ParsedAmount struct {
	Amount      string
	Currency    string
	Description string
}

// Record is one finished expense row, ready for the ledger.
type Record struct {
	Date                string // YYYY-MM-DD
	Timestamp           string // YYYY-MM-DD HH:MM:SS
	Amount              string
	Currency            string
	Description         string
	Author              string
	AttachmentReference string // empty when the event carried no file or the relay failed
	OriginalText        string // the source line, verbatim
}

// Row returns the record as an ordered tuple matching the ledger column order.
func (r Record) Row() []interface{} {
	return []interface{}{
		r.Date,
		r.Timestamp,
		r.Amount,
		r.Currency,
		r.Description,
		r.Author,
		r.AttachmentReference,
		r.OriginalText,
	}
}
