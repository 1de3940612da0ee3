package domain

import (
	"regexp"
	"strings"
)

// IsWiringTask matches checklist tasks and inspection labels that track the
// physical installation. Renaming a template away from these words detaches
// it from the wiring bindings.
func IsWiringTask(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "wiring") || strings.Contains(lower, "installation")
}

type NumberFormat string

const (
	NumberFormatAadhaar   NumberFormat = "aadhaar"
	NumberFormatLightBill NumberFormat = "light_bill"
	NumberFormatFreeText  NumberFormat = "free_text"
)

var (
	aadhaarPattern   = regexp.MustCompile(`^\d{12}$`)
	lightBillPattern = regexp.MustCompile(`^[a-zA-Z0-9\-/]+$`)
)

// DocumentNumberFormat picks the number format from the document name.
func DocumentNumberFormat(name string) NumberFormat {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "aadhaar"):
		return NumberFormatAadhaar
	case strings.Contains(lower, "light bill"):
		return NumberFormatLightBill
	default:
		return NumberFormatFreeText
	}
}

// ValidateDocumentNumber checks number against the format implied by the
// document name. An empty number is always accepted.
func ValidateDocumentNumber(name, number string) error {
	if strings.TrimSpace(number) == "" {
		return nil
	}
	switch DocumentNumberFormat(name) {
	case NumberFormatAadhaar:
		if !aadhaarPattern.MatchString(strings.Join(strings.Fields(number), "")) {
			return ErrInvalidDocumentNumber
		}
	case NumberFormatLightBill:
		if !lightBillPattern.MatchString(strings.TrimSpace(number)) {
			return ErrInvalidDocumentNumber
		}
	}
	return nil
}

// DeriveDocumentStatus computes a document's status from its flags.
func DeriveDocumentStatus(doc Document) Status {
	switch {
	case doc.Verified:
		return StatusCompleted
	case doc.HasFile():
		return StatusInProgress
	default:
		return StatusPending
	}
}
