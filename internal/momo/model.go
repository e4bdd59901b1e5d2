package momo

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies which mobile-money dialect a message was written in.
type Provider string

const (
	ProviderMTN          Provider = "MTN_MOMO"
	ProviderVodafoneCash Provider = "VODAFONE_CASH"
	ProviderAirtelTigo   Provider = "AIRTELTIGO_MONEY"
	ProviderMPesa        Provider = "MPESA"
	ProviderAirtelMoney  Provider = "AIRTEL_MONEY"
	ProviderOrangeMoney  Provider = "ORANGE_MONEY"
	ProviderEcoCash      Provider = "ECOCASH"
	ProviderUnknown      Provider = "UNKNOWN"
)

// Category is the transaction kind inferred from the message text.
type Category string

const (
	CategoryReceived Category = "RECEIVED"
	CategorySent     Category = "SENT"
	CategoryCashOut  Category = "CASH_OUT"
	CategoryAirtime  Category = "AIRTIME"
	CategoryDeposit  Category = "DEPOSIT"
	CategoryPayment  Category = "PAYMENT"
	CategoryUnknown  Category = "UNKNOWN"
)

// RawMessage is one SMS as delivered by the platform. It is never persisted
// as-is; only the extracted record is.
type RawMessage struct {
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// ParsedTransaction holds the typed fields pulled out of one message body.
// Amounts are integer minor units (pesewas/cents), never floats.
type ParsedTransaction struct {
	Provider         Provider `json:"provider"`
	Category         Category `json:"category"`
	AmountMinorUnits int64    `json:"amount_minor_units"`
	Currency         string   `json:"currency"`
	Counterparty     *string  `json:"counterparty,omitempty"`
	Reference        *string  `json:"reference,omitempty"`
	// BalanceAfterMinorUnits is the provider-reported post-transaction
	// balance, best-effort.
	BalanceAfterMinorUnits *int64 `json:"balance_after_minor_units,omitempty"`
	RawMessage             string `json:"raw_message"`
}

// SmsTransactionRecord is the persisted form of a parsed message.
// WalletCredited flips false -> true exactly once and never back.
type SmsTransactionRecord struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Sender string `json:"sender"`
	ParsedTransaction
	WalletCredited bool      `json:"wallet_credited"`
	CreatedAt      time.Time `json:"created_at"`
}

// BuildRecord turns a parsed transaction into a new persistable record.
// Pure transformation: no side effects beyond generating the id.
func BuildRecord(userID, sender string, parsed ParsedTransaction) SmsTransactionRecord {
	return SmsTransactionRecord{
		ID:                uuid.NewString(),
		UserID:            userID,
		Sender:            sender,
		ParsedTransaction: parsed,
		WalletCredited:    false,
		CreatedAt:         time.Now().UTC(),
	}
}
