package finance

import (
	"fmt"
	"math"
)

var assetTypeLabels = map[string]string{
	"cash":        "Cash",
	"checking":    "Checking Account",
	"savings":     "Savings Account",
	"investment":  "Investment",
	"retirement":  "Retirement Account",
	"real_estate": "Real Estate",
	"vehicle":     "Vehicle",
	"crypto":      "Cryptocurrency",
	"other":       "Other",
}

var liabilityTypeLabels = map[string]string{
	"credit_card":   "Credit Card",
	"student_loan":  "Student Loan",
	"mortgage":      "Mortgage",
	"auto_loan":     "Auto Loan",
	"personal_loan": "Personal Loan",
	"medical_debt":  "Medical Debt",
	"other":         "Other",
}

// AssetTypeLabel returns the display name for an asset type. Unknown types
// are returned unchanged.
func AssetTypeLabel(t string) string {
	if l, ok := assetTypeLabels[t]; ok {
		return l
	}
	return t
}

// LiabilityTypeLabel returns the display name for a liability type.
func LiabilityTypeLabel(t string) string {
	if l, ok := liabilityTypeLabels[t]; ok {
		return l
	}
	return t
}

// FormatSignedPercent renders 3.42 as "+3.4%". NaN renders as "0.0%".
func FormatSignedPercent(v float64) string {
	if math.IsNaN(v) {
		return "0.0%"
	}
	if v >= 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}
