package model

// Transaction is a spend record against a budget, optionally split across categories.
type Transaction struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"user_id"`
	BudgetID    int64              `json:"budget_id"`
	CategoryID  *int64             `json:"category_id"`
	AmountCents int64              `json:"amount_cents"`
	Date        string             `json:"date"`
	Notes       *string            `json:"notes"`
	IsSplit     bool               `json:"is_split"`
	CreatedAt   string             `json:"created_at,omitempty"`
	UpdatedAt   string             `json:"updated_at,omitempty"`
	Splits      []TransactionSplit `json:"splits,omitempty"`
}

// NoteText returns the notes or an empty string.
func (t Transaction) NoteText() string {
	if t.Notes == nil {
		return ""
	}
	return *t.Notes
}

// TransactionSplit assigns part of a transaction to a category.
type TransactionSplit struct {
	CategoryID  int64  `json:"category_id"`
	AmountCents int64  `json:"amount_cents"`
	Notes       string `json:"notes,omitempty"`
}

// TransactionCreate is the payload for creating or updating a transaction.
type TransactionCreate struct {
	BudgetID    int64              `json:"budget_id"`
	CategoryID  *int64             `json:"category_id,omitempty"`
	AmountCents int64              `json:"amount_cents"`
	Date        string             `json:"date"`
	Notes       string             `json:"notes"`
	IsSplit     bool               `json:"is_split"`
	Splits      []TransactionSplit `json:"splits,omitempty"`
}

// CategorySpend is one row of a budget transaction summary.
type CategorySpend struct {
	CategoryID       int64  `json:"category_id"`
	CategoryName     string `json:"category_name"`
	AllocatedCents   int64  `json:"allocated_cents"`
	SpentCents       int64  `json:"spent_cents"`
	RemainingCents   int64  `json:"remaining_cents"`
	TransactionCount int    `json:"transaction_count"`
}

// TransactionSummary is the per-budget spend rollup.
type TransactionSummary struct {
	BudgetID         int64           `json:"budget_id"`
	TotalSpentCents  int64           `json:"total_spent_cents"`
	TransactionCount int             `json:"transaction_count"`
	Categories       []CategorySpend `json:"categories"`
}

// SpentByCategory indexes the summary by category ID.
func (s TransactionSummary) SpentByCategory() map[int64]int64 {
	out := make(map[int64]int64, len(s.Categories))
	for _, c := range s.Categories {
		out[c.CategoryID] = c.SpentCents
	}
	return out
}

// SuggestionReason explains why a category was suggested.
type SuggestionReason string

const (
	ReasonExactMatch     SuggestionReason = "exact_match"
	ReasonKeywordMatch   SuggestionReason = "keyword_match"
	ReasonSimilarAmount  SuggestionReason = "similar_amount"
	ReasonFrequentlyUsed SuggestionReason = "frequently_used"
)

// CategorySuggestion is one ranked candidate for a transaction's category.
type CategorySuggestion struct {
	CategoryID   int64            `json:"category_id"`
	CategoryName string           `json:"category_name"`
	Confidence   float64          `json:"confidence"`
	Reason       SuggestionReason `json:"reason"`
	UsageCount   int              `json:"usage_count"`
}

// SuggestionRequest asks for category suggestions for a pending transaction.
type SuggestionRequest struct {
	BudgetID    int64  `json:"budget_id"`
	Notes       string `json:"notes"`
	AmountCents int64  `json:"amount_cents,omitempty"`
}

// SuggestionFeedback records which category the user actually chose.
type SuggestionFeedback struct {
	TransactionID       *int64 `json:"transaction_id,omitempty"`
	SuggestedCategoryID int64  `json:"suggested_category_id"`
	ActualCategoryID    int64  `json:"actual_category_id"`
	PatternText         string `json:"pattern_text"`
}

// SuggestionStats summarizes suggestion accuracy.
type SuggestionStats struct {
	TotalSuggestions int     `json:"total_suggestions"`
	Accepted         int     `json:"accepted"`
	Rejected         int     `json:"rejected"`
	Accuracy         float64 `json:"accuracy"`
}
