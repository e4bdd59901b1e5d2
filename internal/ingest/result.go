package ingest

// ResultKind discriminates the per-message processing outcome.
type ResultKind string

const (
	// ResultNotMoneyMessage: classification miss, silently ignored.
	ResultNotMoneyMessage ResultKind = "NOT_MONEY_MESSAGE"
	// ResultParseFailed: no amount could be located; nothing persisted.
	ResultParseFailed ResultKind = "PARSE_FAILED"
	// ResultDuplicate: the reference was already processed; no mutation.
	ResultDuplicate ResultKind = "DUPLICATE"
	// ResultSaved: record persisted, no crediting applies to its category.
	ResultSaved ResultKind = "SAVED"
	// ResultCreditedWallet: record persisted and the wallet credited.
	ResultCreditedWallet ResultKind = "CREDITED_WALLET"
	// ResultCreditFailed: record persisted but crediting failed; the
	// recovery scanner will retry it.
	ResultCreditFailed ResultKind = "CREDIT_FAILED"
)

// ProcessResult carries the outcome variant and its payload fields. Only
// the fields of the active Kind are meaningful.
type ProcessResult struct {
	Kind        ResultKind `json:"kind"`
	RecordID    string     `json:"record_id,omitempty"`
	Reference   string     `json:"reference,omitempty"`
	AmountDelta int64      `json:"amount_delta,omitempty"`
	NewBalance  int64      `json:"new_balance,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

func notMoneyMessage() ProcessResult { return ProcessResult{Kind: ResultNotMoneyMessage} }

func parseFailed() ProcessResult { return ProcessResult{Kind: ResultParseFailed} }

func duplicate(reference string) ProcessResult {
	return ProcessResult{Kind: ResultDuplicate, Reference: reference}
}

func saved(recordID string) ProcessResult {
	return ProcessResult{Kind: ResultSaved, RecordID: recordID}
}

func creditedWallet(recordID string, delta, newBalance int64) ProcessResult {
	return ProcessResult{
		Kind:        ResultCreditedWallet,
		RecordID:    recordID,
		AmountDelta: delta,
		NewBalance:  newBalance,
	}
}

func creditFailed(recordID, reason string) ProcessResult {
	return ProcessResult{Kind: ResultCreditFailed, RecordID: recordID, Reason: reason}
}
