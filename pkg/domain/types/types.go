package types

// MessageID identifies a stored financial message record.
type MessageID int64

// InvestigationID identifies an investigation record.
type InvestigationID int64

// ActionID identifies an investigation action record.
type ActionID int64
