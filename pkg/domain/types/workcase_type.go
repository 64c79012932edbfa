package types

// WorkcaseType classifies the nature of the failure being investigated
type WorkcaseType string

const (
	WorkcaseNonReceipt           WorkcaseType = "NON_RECEIPT"
	WorkcaseCancellation         WorkcaseType = "CANCELLATION"
	WorkcaseReturnFunds          WorkcaseType = "RETURN_FUNDS"
	WorkcaseWrongAmount          WorkcaseType = "WRONG_AMOUNT"
	WorkcaseDuplicatePayment     WorkcaseType = "DUPLICATE_PAYMENT"
	WorkcaseWrongBeneficiary     WorkcaseType = "WRONG_BENEFICIARY"
	WorkcaseRegulatoryCompliance WorkcaseType = "REGULATORY_COMPLIANCE"
	WorkcaseTechnicalIssue       WorkcaseType = "TECHNICAL_ISSUE"
	WorkcaseQuery                WorkcaseType = "QUERY"
	WorkcaseUnknown              WorkcaseType = "UNKNOWN"
)

// AllWorkcaseTypes returns all valid workcase types
func AllWorkcaseTypes() []WorkcaseType {
	return []WorkcaseType{
		WorkcaseNonReceipt,
		WorkcaseCancellation,
		WorkcaseReturnFunds,
		WorkcaseWrongAmount,
		WorkcaseDuplicatePayment,
		WorkcaseWrongBeneficiary,
		WorkcaseRegulatoryCompliance,
		WorkcaseTechnicalIssue,
		WorkcaseQuery,
		WorkcaseUnknown,
	}
}

// IsValid checks if the workcase type is valid
func (t WorkcaseType) IsValid() bool {
	switch t {
	case WorkcaseNonReceipt,
		WorkcaseCancellation,
		WorkcaseReturnFunds,
		WorkcaseWrongAmount,
		WorkcaseDuplicatePayment,
		WorkcaseWrongBeneficiary,
		WorkcaseRegulatoryCompliance,
		WorkcaseTechnicalIssue,
		WorkcaseQuery,
		WorkcaseUnknown:
		return true
	default:
		return false
	}
}

// Normalize maps absent or unrecognized values to WorkcaseUnknown.
// Generative output is not trusted to produce a member of the enum.
func (t WorkcaseType) Normalize() WorkcaseType {
	if !t.IsValid() {
		return WorkcaseUnknown
	}
	return t
}

// String returns the string representation of the workcase type
func (t WorkcaseType) String() string {
	return string(t)
}
