package momo

import "regexp"

// PatternTable is one provider dialect: the sender identifiers that
// authenticate it, the keywords that detect it, and the ordered regex
// chains for every extracted field. Tables are data so a new market is a
// new table, not new pipeline code. Every rule chain is evaluated in
// declared order, first match wins.
type PatternTable struct {
	Provider  Provider
	SenderIDs []string // exact or case-insensitive prefix match against SMS sender
	Keywords  []string // lower-cased tokens for provider detection in sender/body
	Currency  string   // market default when the message carries no currency token

	Amount       []*regexp.Regexp // named groups: cur (optional), amt
	Reference    []*regexp.Regexp // named group: ref
	Balance      []*regexp.Regexp // named group: amt
	Counterparty []*regexp.Regexp // named group: name
}

const (
	amtPat = `[0-9][0-9,]*(?:\.[0-9]{1,2})?`
	// Currency codes of the markets we parse today. Keeping the closed set
	// in the primary amount rule stops reference tokens like "ABC123456"
	// from being read as currency+amount.
	curPat = `GHS|KES|TZS|UGX|RWF|NGN|XOF|XAF|ZMW|MWK|GMD|SLE|LRD|ETB|ZWG|USD`
)

// Shared amount rules: CURRENCY AMOUNT first, then AMOUNT CURRENCY.
// The generic-code variant demands whitespace between token and digits so
// alphanumeric transaction ids never split into a fake currency+amount.
var (
	reAmtKnownCurFirst = regexp.MustCompile(`\b(?P<cur>` + curPat + `)\s*(?P<amt>` + amtPat + `)\b`)
	reAmtCurFirst      = regexp.MustCompile(`\b(?P<cur>[A-Z]{2,4})\s+(?P<amt>` + amtPat + `)\b`)
	reAmtCurLast       = regexp.MustCompile(`\b(?P<amt>` + amtPat + `)\s*(?P<cur>[A-Z]{2,4})\b`)
	// Bare amount anchored to a payment verb, last resort for messages
	// that drop the currency token entirely; the provider's market
	// currency fills the gap. The verb anchor keeps phone numbers and
	// dates out.
	reAmtBare = regexp.MustCompile(`(?i)\b(?:received|sent|paid|credited|debited|deposited|withdrew|withdrawn|transferred)\b[^0-9]{0,24}(?P<amt>` + amtPat + `)\b`)
)

// Shared reference rules, ordered to never capture phone numbers or balance
// figures: (1) explicitly labeled token, (2) provider-shaped letters+digits,
// (3) long digits only when an id/ref label sits right before them.
var (
	reRefLabeled = regexp.MustCompile(`(?i)\b(?:transaction\s*id|trans\s*id|txn\s*id|txn|ref(?:erence)?(?:\s*(?:no|number|id))?|id)\s*[:#.\-]?\s*(?P<ref>[A-Za-z0-9]{6,20})\b`)
	reRefShaped  = regexp.MustCompile(`\b(?P<ref>[A-Z]{2,4}[0-9]{6,12})\b`)
	reRefDigits  = regexp.MustCompile(`(?i)\b(?:id|ref)\s*[:#.\-]?\s*(?P<ref>[0-9]{6,20})\b`)
)

var (
	reBalBalance   = regexp.MustCompile(`(?i)\b(?:new\s+balance|available\s+balance|current\s+balance|balance)\s*(?:is)?\s*[:\-]?\s*(?:[A-Za-z]{2,4}\s*)?(?P<amt>` + amtPat + `)\b`)
	reBalBal       = regexp.MustCompile(`(?i)\bbal\s*[:.\-]?\s*(?:[A-Za-z]{2,4}\s*)?(?P<amt>` + amtPat + `)\b`)
	reBalAvailable = regexp.MustCompile(`(?i)\bavailable\s*[:\-]?\s*(?:[A-Za-z]{2,4}\s*)?(?P<amt>` + amtPat + `)\b`)
)

// Counterparty is the text between from/to and the next delimiter or
// label word. Best-effort; may legitimately be a phone number.
var (
	reCpFrom = regexp.MustCompile(`(?i)\bfrom\s+(?P<name>[^.,;\n]+?)(?:[.,;\n]|\s+(?:on|via|at|ref|reference|trans|transaction|txn|id|new|your|current|bal|balance|fee)\b|$)`)
	reCpTo   = regexp.MustCompile(`(?i)\bto\s+(?P<name>[^.,;\n]+?)(?:[.,;\n]|\s+(?:on|via|at|ref|reference|trans|transaction|txn|id|new|your|current|bal|balance|fee)\b|$)`)
)

var sharedAmount = []*regexp.Regexp{reAmtKnownCurFirst, reAmtCurFirst, reAmtCurLast, reAmtBare}
var sharedReference = []*regexp.Regexp{reRefLabeled, reRefShaped, reRefDigits}
var sharedBalance = []*regexp.Regexp{reBalBalance, reBalBal, reBalAvailable}
var sharedCounterparty = []*regexp.Regexp{reCpFrom, reCpTo}

// M-Pesa confirmations open with the receipt code ("QDK3RT61XY Confirmed ...")
// and write amounts as "Ksh500.00", which the uppercase-code rules never hit.
var (
	reRefMPesaLead = regexp.MustCompile(`^(?P<ref>[A-Z0-9]{10})\s+Confirmed\b`)
	reAmtMPesaKsh  = regexp.MustCompile(`(?i)\bKsh\.?\s*(?P<amt>` + amtPat + `)\b`)
)

// providerTables is ordered; detection takes the first table whose sender id
// or keywords match.
var providerTables = []*PatternTable{
	{
		Provider:     ProviderMTN,
		SenderIDs:    []string{"MobileMoney", "MTN Mobile Money", "MTNMoMo", "MTN"},
		Keywords:     []string{"mtn", "momo"},
		Currency:     "GHS",
		Amount:       sharedAmount,
		Reference:    sharedReference,
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	},
	{
		Provider:     ProviderVodafoneCash,
		SenderIDs:    []string{"Vodafone Cash", "VodafoneCash", "Telecel Cash", "TelecelCash", "VFCash"},
		Keywords:     []string{"vodafone cash", "telecel cash", "vf cash"},
		Currency:     "GHS",
		Amount:       sharedAmount,
		Reference:    sharedReference,
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	},
	{
		Provider:     ProviderAirtelTigo,
		SenderIDs:    []string{"ATMoney", "AT Money", "AirtelTigo"},
		Keywords:     []string{"airteltigo", "at money"},
		Currency:     "GHS",
		Amount:       sharedAmount,
		Reference:    sharedReference,
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	},
	{
		Provider:     ProviderMPesa,
		SenderIDs:    []string{"MPESA", "M-PESA", "Safaricom"},
		Keywords:     []string{"m-pesa", "mpesa"},
		Currency:     "KES",
		Amount:       append([]*regexp.Regexp{reAmtMPesaKsh}, sharedAmount...),
		Reference:    append([]*regexp.Regexp{reRefMPesaLead}, sharedReference...),
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	},
	{
		Provider:     ProviderAirtelMoney,
		SenderIDs:    []string{"AirtelMoney", "Airtel Money", "Airtel"},
		Keywords:     []string{"airtel money"},
		Currency:     "UGX",
		Amount:       sharedAmount,
		Reference:    sharedReference,
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	},
	{
		Provider:     ProviderOrangeMoney,
		SenderIDs:    []string{"OrangeMoney", "Orange Money", "Orange"},
		Keywords:     []string{"orange money"},
		Currency:     "XOF",
		Amount:       sharedAmount,
		Reference:    sharedReference,
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	},
	{
		Provider:     ProviderEcoCash,
		SenderIDs:    []string{"EcoCash", "Ecocash"},
		Keywords:     []string{"ecocash"},
		Currency:     "USD",
		Amount:       sharedAmount,
		Reference:    sharedReference,
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	},
}

// genericTable handles messages from no known provider. Same strict
// amount policy as the provider tables: no amount, no transaction.
func genericTable(defaultCurrency string) *PatternTable {
	return &PatternTable{
		Provider:     ProviderUnknown,
		Currency:     defaultCurrency,
		Amount:       sharedAmount,
		Reference:    sharedReference,
		Balance:      sharedBalance,
		Counterparty: sharedCounterparty,
	}
}

// categoryGroup pairs a category with its trigger keywords. Groups are
// scanned in declared order as a deliberate tie-break: received/sent first
// because crediting is the primary use case and cash-out boilerplate often
// mentions "deposit".
type categoryGroup struct {
	Category Category
	Keywords []string
}

var categoryGroups = []categoryGroup{
	{CategoryReceived, []string{"received", "credited", "has been added"}},
	{CategorySent, []string{"sent", "transferred"}},
	{CategoryCashOut, []string{"cash out", "cash-out", "cashout", "withdraw", "withdrawn", "withdrew"}},
	{CategoryAirtime, []string{"airtime", "top up", "top-up", "topup", "recharge", "bundle"}},
	{CategoryDeposit, []string{"deposit", "cash in", "cash-in", "cashin"}},
	{CategoryPayment, []string{"payment", "paid", "bill"}},
}
