package momo

import (
	"regexp"
	"strings"

	"github.com/ikanisa/MomoTerminal-sub001/internal/money"
)

// Extractor turns a raw message body into typed transaction fields.
// Provider detection runs first and selects a pattern table; every field
// then follows its own ordered rule chain within that table.
type Extractor struct {
	tables  []*PatternTable
	generic *PatternTable
}

// NewExtractor builds an extractor whose generic table defaults to the
// given market currency.
func NewExtractor(defaultCurrency string) *Extractor {
	return &Extractor{
		tables:  providerTables,
		generic: genericTable(defaultCurrency),
	}
}

// Extract parses one message. ok is false when no amount pattern matched:
// a message without a parseable amount cannot be credited and is not worth
// persisting. This strict policy applies to the generic table too, not only
// the provider-specific ones.
func (e *Extractor) Extract(sender, body string) (ParsedTransaction, bool) {
	table := e.detectProvider(sender, body)

	amountMinor, currency, ok := extractAmount(table, body)
	if !ok {
		return ParsedTransaction{}, false
	}

	parsed := ParsedTransaction{
		Provider:         table.Provider,
		Category:         extractCategory(body),
		AmountMinorUnits: amountMinor,
		Currency:         currency,
		Counterparty:     extractCounterparty(table, body),
		Reference:        extractReference(table, body),
		RawMessage:       body,
	}

	if bal, ok := extractBalance(table, body); ok {
		parsed.BalanceAfterMinorUnits = &bal
	}

	return parsed, true
}

// detectProvider matches sender and body against each table's identifiers
// in declared order; the first hit wins, otherwise the generic table.
func (e *Extractor) detectProvider(sender, body string) *PatternTable {
	senderLower := strings.ToLower(strings.TrimSpace(sender))
	bodyLower := strings.ToLower(body)

	for _, t := range e.tables {
		for _, id := range t.SenderIDs {
			idLower := strings.ToLower(id)
			if senderLower == idLower || strings.HasPrefix(senderLower, idLower) {
				return t
			}
		}
		for _, kw := range t.Keywords {
			if strings.Contains(senderLower, kw) || strings.Contains(bodyLower, kw) {
				return t
			}
		}
	}
	return e.generic
}

func extractAmount(table *PatternTable, body string) (int64, string, bool) {
	for _, re := range table.Amount {
		m := namedMatch(re, body)
		if m == nil {
			continue
		}
		minor, err := money.ParseMinor(m["amt"])
		if err != nil {
			continue
		}
		currency := strings.ToUpper(strings.TrimSpace(m["cur"]))
		if currency == "" {
			currency = table.Currency
		}
		return minor, currency, true
	}
	return 0, "", false
}

func extractCategory(body string) Category {
	lower := strings.ToLower(body)
	for _, g := range categoryGroups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.Category
			}
		}
	}
	return CategoryUnknown
}

func extractReference(table *PatternTable, body string) *string {
	for _, re := range table.Reference {
		m := namedMatch(re, body)
		if m == nil {
			continue
		}
		ref := strings.TrimSpace(m["ref"])
		if ref != "" {
			return &ref
		}
	}
	return nil
}

func extractBalance(table *PatternTable, body string) (int64, bool) {
	for _, re := range table.Balance {
		m := namedMatch(re, body)
		if m == nil {
			continue
		}
		minor, err := money.ParseMinor(m["amt"])
		if err != nil {
			continue
		}
		return minor, true
	}
	return 0, false
}

func extractCounterparty(table *PatternTable, body string) *string {
	for _, re := range table.Counterparty {
		m := namedMatch(re, body)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m["name"])
		if name != "" {
			return &name
		}
	}
	return nil
}

// namedMatch runs the regexp and returns its named groups, or nil when the
// pattern did not match.
func namedMatch(re *regexp.Regexp, s string) map[string]string {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	out := make(map[string]string, 2)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			out[name] = match[i]
		}
	}
	return out
}
