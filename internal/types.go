package internal

// Payload is one listing's bibliographic data as decoded from an agent JSON
// file. Keys are lower-cased on load so lookups are case-insensitive.
type Payload map[string]any

// Get returns the value for a lower-cased field name, or nil.
func (p Payload) Get(field string) any {
	if p == nil {
		return nil
	}
	return p[field]
}

// Row is a fully normalized listing keyed by workbook column name.
type Row map[string]any

// SkippedInput records one input that was dropped from a batch, with the
// reason reported to the operator.
type SkippedInput struct {
	Name   string
	Reason string
}

// BatchReport summarizes a queue-append or batch-workbook run.
type BatchReport struct {
	WorkbookPath string
	Appended     []string
	Skipped      []SkippedInput
}

// AgentText is the three-part `price ||| html ||| condition` output produced
// by the text-mode identification agent.
type AgentText struct {
	Price           string
	DescriptionHTML string
	ConditionID     string
}

// RunRecord is one entry in the sqlite run ledger.
type RunRecord struct {
	ID        int
	Kind      string
	Counts    map[string]int
	Details   string
	CreatedAt string
}
