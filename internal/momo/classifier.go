package momo

import (
	"regexp"
	"strings"
)

// Classifier decides whether an SMS is a mobile-money confirmation at all.
// A matching sender id is the strong signal and the anti-spoofing gate:
// arbitrary senders must never be treated as payment confirmations on
// keywords alone. The keyword+amount fallback exists because provider
// sender ids drift across markets and over time; it can misclassify an
// unrelated message that happens to mention both an amount and a
// payment-shaped word, which is accepted because a missed real transaction
// is worse than a stray record.
type Classifier struct {
	senderIDs []string
}

// Either "CUR nnn.nn" or "nnn.nn CUR" with an uppercase 2-4 letter
// currency-like token. Uppercase on purpose: (?i) here would turn common
// short words ("of 50") into currency tokens.
var reCurrencyAmount = regexp.MustCompile(`\b[A-Z]{2,4}\s?[0-9][0-9,]*(?:\.[0-9]{1,2})?\b|\b[0-9][0-9,]*(?:\.[0-9]{1,2})?\s?[A-Z]{2,4}\b`)

var moneyKeywords = []string{
	"received",
	"credited",
	"deposit",
	"momo",
	"mobile money",
	"cash out",
	"cash in",
	"withdrawn",
	"airtime",
	"wallet",
	"m-pesa",
	"mpesa",
	"transaction",
}

func NewClassifier() *Classifier {
	var ids []string
	for _, t := range providerTables {
		ids = append(ids, t.SenderIDs...)
	}
	return &Classifier{senderIDs: ids}
}

// IsMoneyMessage reports whether the message should enter the pipeline.
func (cl *Classifier) IsMoneyMessage(sender, body string) bool {
	if cl.KnownSender(sender) {
		return true
	}

	// Fallback heuristic: both an amount-shaped token and a domain keyword
	// are required, to keep promotional SMS out.
	if !reCurrencyAmount.MatchString(body) {
		return false
	}
	lower := strings.ToLower(body)
	for _, kw := range moneyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// KnownSender reports whether the sender matches the per-market allowlist,
// by exact or case-insensitive prefix match.
func (cl *Classifier) KnownSender(sender string) bool {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return false
	}
	for _, id := range cl.senderIDs {
		if strings.EqualFold(sender, id) {
			return true
		}
		if len(sender) >= len(id) && strings.EqualFold(sender[:len(id)], id) {
			return true
		}
	}
	return false
}
