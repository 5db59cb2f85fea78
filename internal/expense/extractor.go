package expense

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultHomeCurrency is used when no currency can be inferred from a line
// and the deployment did not configure one.
const DefaultHomeCurrency = "INR"

// Extractor turns one trimmed expense line into a ParsedAmount. It is a
// replaceable strategy: the regex implementation is the default, and
// LLMExtractor offers the same contract backed by a language model.
type Extractor interface {
	Extract(ctx context.Context, line string) ParsedAmount
}

// amountPattern matches the first thing shaped like an amount:
// an optional currency symbol, digits with optional thousands grouping and
// up to two decimals, then an optional trailing currency code or symbol.
// Trailing codes must be uppercase; lowercase three-letter words are almost
// always prose, not currencies.
var amountPattern = regexp.MustCompile(`([₹$€£¥])?\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d{1,2})?\s?([A-Z]{3}\b|[₹$€£¥])?`)

var symbolCurrencies = map[string]string{
	"₹": "INR",
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
}

// RegexExtractor is the default heuristic extraction strategy.
type RegexExtractor struct {
	homeCurrency string
}

// NewRegexExtractor creates a regex-based extractor with the given home
// currency fallback.
func NewRegexExtractor(homeCurrency string) *RegexExtractor {
	if homeCurrency == "" {
		homeCurrency = DefaultHomeCurrency
	}
	return &RegexExtractor{homeCurrency: homeCurrency}
}

// Extract parses a line into amount, currency and description. It never
// fails: lines without a recognizable amount degrade to an empty amount,
// the home currency and the full line as description.
func (e *RegexExtractor) Extract(_ context.Context, line string) ParsedAmount {
	loc := amountPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return ParsedAmount{
			Amount:      "",
			Currency:    e.homeCurrency,
			Description: line,
		}
	}

	intPart := line[loc[4]:loc[5]]
	amount := strings.ReplaceAll(intPart, ",", "")
	if loc[6] >= 0 {
		amount += line[loc[6]:loc[7]]
	}

	leadingSymbol := ""
	if loc[2] >= 0 {
		leadingSymbol = line[loc[2]:loc[3]]
	}
	trailing := ""
	if loc[8] >= 0 {
		trailing = line[loc[8]:loc[9]]
	}

	currency := e.resolveCurrency(leadingSymbol, trailing)
	description := describe(line, loc[0], loc[1])

	return ParsedAmount{
		Amount:      amount,
		Currency:    currency,
		Description: description,
	}
}

// resolveCurrency picks the currency in priority order: explicit trailing
// code, then any adjacent symbol, then the home currency. Codes are three
// runes, not three bytes: a trailing ₹ or € is a symbol, never a code.
func (e *RegexExtractor) resolveCurrency(leadingSymbol, trailing string) string {
	if utf8.RuneCountInString(trailing) == 3 {
		return strings.ToUpper(trailing)
	}
	if code, ok := symbolCurrencies[leadingSymbol]; ok {
		return code
	}
	if code, ok := symbolCurrencies[trailing]; ok {
		return code
	}
	return e.homeCurrency
}

// describe derives the description from the text around the matched amount
// span. The text after the amount wins; the text before it is the next
// choice; the full line is the last resort so the result is never empty.
func describe(line string, matchStart, matchEnd int) string {
	const separators = " \t-:"

	if after := strings.Trim(line[matchEnd:], separators); after != "" {
		return capitalize(after)
	}
	if before := strings.Trim(line[:matchStart], separators); before != "" {
		return capitalize(before)
	}
	return line
}

// capitalize upper-cases the first rune, leaving the rest untouched.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
