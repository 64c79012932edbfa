package types

import "fmt"

// ProcessingMode selects how a message is handled by the pipeline
type ProcessingMode string

const (
	// ModeConvert requests an MT to MX (ISO 20022) format conversion
	ModeConvert ProcessingMode = "convert"
	// ModeExtract requests attribute extraction from the message
	ModeExtract ProcessingMode = "extract"
)

// IsValid checks if the processing mode is valid
func (m ProcessingMode) IsValid() bool {
	switch m {
	case ModeConvert, ModeExtract:
		return true
	default:
		return false
	}
}

// Normalize returns the mode, mapping any invalid value to ModeConvert
func (m ProcessingMode) Normalize() ProcessingMode {
	if !m.IsValid() {
		return ModeConvert
	}
	return m
}

// String returns the string representation of the processing mode
func (m ProcessingMode) String() string {
	return string(m)
}

// ParseProcessingMode parses a string into a ProcessingMode
func ParseProcessingMode(s string) (ProcessingMode, error) {
	mode := ProcessingMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid processing mode: %s", s)
	}
	return mode, nil
}
