package momo

import "testing"

func newTestExtractor() *Extractor {
	return NewExtractor("GHS")
}

func TestExtractAmountFidelity(t *testing.T) {
	e := newTestExtractor()

	parsed, ok := e.Extract("MobileMoney", "You have received GHS 1,234.56 from John. Transaction ID: ABC123456")
	if !ok {
		t.Fatal("expected extraction to succeed")
	}

	if parsed.AmountMinorUnits != 123456 {
		t.Errorf("amount = %d, want 123456", parsed.AmountMinorUnits)
	}
	if parsed.Currency != "GHS" {
		t.Errorf("currency = %q, want GHS", parsed.Currency)
	}
	if parsed.Category != CategoryReceived {
		t.Errorf("category = %q, want %q", parsed.Category, CategoryReceived)
	}
	if parsed.Reference == nil || *parsed.Reference != "ABC123456" {
		t.Errorf("reference = %v, want ABC123456", parsed.Reference)
	}
	if parsed.Counterparty == nil || *parsed.Counterparty != "John" {
		t.Errorf("counterparty = %v, want John", parsed.Counterparty)
	}
	if parsed.Provider != ProviderMTN {
		t.Errorf("provider = %q, want %q", parsed.Provider, ProviderMTN)
	}
}

func TestExtractProviderDisambiguation(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name   string
		sender string
		body   string
	}{
		{
			name:   "vodafone style",
			sender: "Vodafone Cash",
			body:   "Sent GHS 50.00 to Jane Doe. Ref: XY98765432",
		},
		{
			name:   "mtn style",
			sender: "MobileMoney",
			body:   "You have sent GHS 50.00 to Jane Doe Trans ID: XY98765432",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := e.Extract(tt.sender, tt.body)
			if !ok {
				t.Fatal("expected extraction to succeed")
			}
			if parsed.Category != CategorySent {
				t.Errorf("category = %q, want %q", parsed.Category, CategorySent)
			}
			if parsed.AmountMinorUnits != 5000 {
				t.Errorf("amount = %d, want 5000", parsed.AmountMinorUnits)
			}
			if parsed.Reference == nil || *parsed.Reference != "XY98765432" {
				t.Errorf("reference = %v, want XY98765432", parsed.Reference)
			}
			if parsed.Counterparty == nil || *parsed.Counterparty != "Jane Doe" {
				t.Errorf("counterparty = %v, want Jane Doe", parsed.Counterparty)
			}
		})
	}
}

func TestExtractNoAmountFails(t *testing.T) {
	e := newTestExtractor()

	// Strict policy: a message with no parseable amount fails extraction
	// outright, even for a trusted sender.
	if _, ok := e.Extract("MobileMoney", "Buy data bundles today!"); ok {
		t.Error("expected extraction to fail for promotional text")
	}
	if _, ok := e.Extract("+233555000111", "Your package has shipped"); ok {
		t.Error("expected extraction to fail for unrelated text")
	}
}

func TestExtractUnlabeledPhoneNumberIsNotReference(t *testing.T) {
	e := newTestExtractor()

	parsed, ok := e.Extract("MobileMoney", "You have received GHS 50.00 from 0241234567. Enjoy.")
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if parsed.Reference != nil {
		t.Errorf("reference = %q, want nil: bare digit runs must never be taken for a reference", *parsed.Reference)
	}
}

func TestExtractDefaultsToMarketCurrency(t *testing.T) {
	e := newTestExtractor()

	parsed, ok := e.Extract("MobileMoney", "You have received 50.00 from John Doe. Trans ID: AB12CD34EF")
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if parsed.AmountMinorUnits != 5000 {
		t.Errorf("amount = %d, want 5000", parsed.AmountMinorUnits)
	}
	if parsed.Currency != "GHS" {
		t.Errorf("currency = %q, want market default GHS", parsed.Currency)
	}
}

func TestExtractMPesaDialect(t *testing.T) {
	e := newTestExtractor()

	body := "QDK3RT61XY Confirmed. You have received Ksh500.00 from JOHN DOE 0712345678. New M-PESA balance is Ksh1,200.00."
	parsed, ok := e.Extract("MPESA", body)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}

	if parsed.Provider != ProviderMPesa {
		t.Errorf("provider = %q, want %q", parsed.Provider, ProviderMPesa)
	}
	if parsed.AmountMinorUnits != 50000 {
		t.Errorf("amount = %d, want 50000", parsed.AmountMinorUnits)
	}
	if parsed.Currency != "KES" {
		t.Errorf("currency = %q, want KES", parsed.Currency)
	}
	if parsed.Reference == nil || *parsed.Reference != "QDK3RT61XY" {
		t.Errorf("reference = %v, want QDK3RT61XY", parsed.Reference)
	}
	if parsed.BalanceAfterMinorUnits == nil || *parsed.BalanceAfterMinorUnits != 120000 {
		t.Errorf("balance = %v, want 120000", parsed.BalanceAfterMinorUnits)
	}
}

func TestExtractCategoryTieBreaks(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		body string
		want Category
	}{
		{
			name: "received beats payment wording",
			body: "Payment received: GHS 20.00 from Acme Ltd. Ref: PM123456",
			want: CategoryReceived,
		},
		{
			name: "cash out despite deposit boilerplate",
			body: "You have withdrawn GHS 200.00 at agent 7711. You can deposit anytime. Ref: CO555666",
			want: CategoryCashOut,
		},
		{
			name: "airtime purchase",
			body: "Airtime top up of GHS 5.00 successful. Ref: AT111222",
			want: CategoryAirtime,
		},
		{
			name: "no category keyword",
			body: "GHS 10.00 moved. Ref: ZZ999888",
			want: CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := e.Extract("MobileMoney", tt.body)
			if !ok {
				t.Fatal("expected extraction to succeed")
			}
			if parsed.Category != tt.want {
				t.Errorf("category = %q, want %q", parsed.Category, tt.want)
			}
		})
	}
}

func TestExtractBalancePhrasings(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		body string
		want int64
	}{
		{
			name: "new balance",
			body: "You have received GHS 50.00 from John. New balance: GHS 1,250.00. Ref: AB123456",
			want: 125000,
		},
		{
			name: "bal shorthand",
			body: "Received GHS 10.00 from Ama. Bal: GHS 35.75. Ref: CD789012",
			want: 3575,
		},
		{
			name: "balance is",
			body: "Credited GHS 5.00 from Kofi. Your balance is GHS 12.00. Ref: EF345678",
			want: 1200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := e.Extract("MobileMoney", tt.body)
			if !ok {
				t.Fatal("expected extraction to succeed")
			}
			if parsed.BalanceAfterMinorUnits == nil {
				t.Fatal("expected a balance")
			}
			if *parsed.BalanceAfterMinorUnits != tt.want {
				t.Errorf("balance = %d, want %d", *parsed.BalanceAfterMinorUnits, tt.want)
			}
		})
	}
}

func TestExtractUnknownProviderFallsBackToGenericTable(t *testing.T) {
	e := newTestExtractor()

	parsed, ok := e.Extract("+233555000111", "Credited GHS 75.50 from AGENT. Ref: 12345678")
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if parsed.Provider != ProviderUnknown {
		t.Errorf("provider = %q, want %q", parsed.Provider, ProviderUnknown)
	}
	if parsed.AmountMinorUnits != 7550 {
		t.Errorf("amount = %d, want 7550", parsed.AmountMinorUnits)
	}
	if parsed.Reference == nil || *parsed.Reference != "12345678" {
		t.Errorf("reference = %v, want 12345678", parsed.Reference)
	}
}
