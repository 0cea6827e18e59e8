package gmail

// MessageID identifies a single message in the provider's store.
type MessageID string

// Message is one normalized email record as consumed by the digest
// pipeline. All textual fields are always populated; the adapter falls
// back to placeholder text when the provider omits a header.
type Message struct {
	Sender    string
	Subject   string
	Date      string // provider-native format, not reparsed
	Body      string // snippet form, not the full body
	Important bool
}

// FilterConfig is the subset of settings that shapes the mail query.
// It is read fresh from the configuration store at the start of each run.
type FilterConfig struct {
	ExcludeRead        bool
	ExcludeSpam        bool
	ExcludePromotional bool
	LookbackDays       int
}

type Query struct {
	Raw string // Gmail query string, already formed (e.g., `newer_than:1d -in:spam`)
}
