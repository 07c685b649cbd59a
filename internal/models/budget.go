package models

import "time"

// BudgetPeriod is the declared reset period of a budget
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
)

// Budget is a spending limit for one category
type Budget struct {
	ID         string       `json:"id"`
	CategoryID string       `json:"categoryId"`
	Amount     float64      `json:"amount"`
	Period     BudgetPeriod `json:"period"`
	CreatedAt  time.Time    `json:"createdAt"`
	IsActive   bool         `json:"isActive"`
}

// Pacing classifies spend against the elapsed part of the month
type Pacing string

const (
	PacingUnder   Pacing = "under"
	PacingOnTrack Pacing = "on-track"
	PacingAhead   Pacing = "ahead"
	PacingOver    Pacing = "over"
)

// BudgetStatus is the computed state of a budget at a reference date
type BudgetStatus struct {
	Budget         Budget  `json:"budget"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	PercentUsed    float64 `json:"percentUsed"`
	PercentOfMonth float64 `json:"percentOfMonth"`
	Pacing         Pacing  `json:"pacing"`
	PacingLabel    string  `json:"pacingLabel"`
	ProjectedTotal float64 `json:"projectedTotal"`
}
