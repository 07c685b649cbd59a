package csvio

import "strings"

// incomeKeywords mark a description as income (lowercase)
var incomeKeywords = []string{
	"payroll", "salary", "paycheck",
	"direct deposit", "direct dep",
	"refund", "cashback", "cash back",
	"dividend", "interest earned",
	"bonus", "rebate", "reimbursement",
	"payment received", "freelance",
	"commission", "wages", "earnings",
}

// neverIncomeKeywords win over incomeKeywords (lowercase)
var neverIncomeKeywords = []string{
	"credit card payment", "card payment", "payment to",
	"loan payment", "mortgage payment", "bill payment", "autopay",
	"transfer to", "withdrawal", "fee", "charge", "penalty",
	"subscription", "membership",
}

// looksLikeIncome classifies a bank description by keyword
func looksLikeIncome(description string) bool {
	desc := strings.ToLower(strings.TrimSpace(description))
	if containsAny(desc, neverIncomeKeywords) {
		return false
	}
	return containsAny(desc, incomeKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
