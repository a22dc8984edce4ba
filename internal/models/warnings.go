package models

// WarningCode categorizes warnings by subsystem.
// W2xxx = quotes.
type WarningCode string

const (
	WarnPlaceholderField WarningCode = "W2001" // field populated with a filler value, not provider data
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
