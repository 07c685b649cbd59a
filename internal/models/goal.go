package models

import "time"

// SavingsGoal tracks progress toward a target amount
type SavingsGoal struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	Deadline      string    `json:"deadline,omitempty"`
	Icon          string    `json:"icon"`
	Color         string    `json:"color"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Progress returns current/target capped at 1. Targets below 1 are treated
// as 1 so an empty target never divides by zero.
func (g SavingsGoal) Progress() float64 {
	target := g.TargetAmount
	if target < 1 {
		target = 1
	}
	p := g.CurrentAmount / target
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
