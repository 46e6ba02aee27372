// Package classifier guesses whether an imported bank row is income or an
// expense and spots transfers between the user's own accounts.
package classifier

import (
	"strings"

	"fintrack/internal/models"
)

// Income detection keywords (lowercase)
var IncomeKeywords = []string{
	"payroll", "salary", "paycheck",
	"deposit direct", "direct deposit",
	"refund", "cashback", "cash back",
	"dividend", "interest earned", "interest",
	"bonus", "tax refund", "rebate",
	"transfer in", "check deposit",
	"payment received", "direct dep",
	"reimbursement", "settlement",
	"gift received", "gift", "freelance",
	"commission", "income", "wages",
	"earnings",
	"employer", "pay stub", "net pay",
	"gross pay", "take home",
}

// Income categories (lowercase)
var IncomeCategories = []string{
	"paycheck", "salary", "income",
	"wages", "payroll", "earnings",
	"dividend", "interest", "refund",
	"deposit", "reimbursement",
}

// Keywords that should NEVER be income (lowercase)
var NeverIncomeKeywords = []string{
	"credit card payment", "cc payment", "card payment", "payment to",
	"loan payment", "mortgage payment", "bill payment", "autopay",
	"scheduled payment", "recurring payment", "transfer to", "withdrawal",
	"debit", "fee", "charge", "penalty", "subscription", "membership",
	"automatic payment", "payment - thank you",
	"recurring scheduled payment",
}

// Internal transfer patterns to filter (lowercase)
var InternalTransferPatterns = []string{
	"funds transfer",
	"internal transfer",
	"online transfer",
	"transfer between accounts",
	"credit card payment",
	"automatic payment - thank you",
	"cc payment",
	"recurring scheduled payment",
}

// Classify decides the type of a bank row. Only positive rows whose
// category or description reads like income are income; everything else,
// including positive rows with a never-income keyword, is an expense.
func Classify(description, category string, amount float64) models.TransactionType {
	desc := normalize(description)

	if containsAny(desc, NeverIncomeKeywords) {
		return models.Expense
	}
	if IsPotentialIncome(description, category, amount) {
		return models.Income
	}
	return models.Expense
}

// IsInternalTransfer reports whether a row moves money between the user's
// own accounts and should not be imported
func IsInternalTransfer(description, category string, amount float64) bool {
	desc := normalize(description)

	for _, pattern := range InternalTransferPatterns {
		if strings.Contains(desc, pattern) {
			// Don't filter if it looks like income
			return !(amount > 0 && containsAny(desc, IncomeKeywords))
		}
	}

	return normalize(category) == "credit card payment"
}

// IsPotentialIncome reports whether a positive row reads like income
func IsPotentialIncome(description, category string, amount float64) bool {
	if amount <= 0 {
		return false
	}
	return matchesCategory(normalize(category)) || containsAny(normalize(description), IncomeKeywords)
}

func matchesCategory(cat string) bool {
	if cat == "" {
		return false
	}
	for _, c := range IncomeCategories {
		if cat == c || strings.Contains(cat, c) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsAny checks if text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
