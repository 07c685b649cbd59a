package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"budgetlens/internal/config"
	"budgetlens/internal/models"
	"budgetlens/internal/services/budgets"
	"budgetlens/internal/services/healthscore"
	"budgetlens/internal/services/insights"
	"budgetlens/internal/services/recurrence"
	"budgetlens/internal/services/yearreview"
)

// Report is everything printed by one run
type Report struct {
	Date       time.Time
	Health     models.HealthScore
	Budgets    []models.BudgetStatus
	Streaks    models.StreakData
	Year       models.YearInReview
	Due        []models.DueRecurring
	Categories models.CategoryIndex
}

// Build runs the analytics engines over a ledger snapshot
func Build(data models.Dataset, th config.Thresholds, now time.Time, year int) Report {
	return Report{
		Date:       now,
		Health:     healthscore.New(th.Health()).Calculate(data.Transactions, data.Budgets, data.Goals, now),
		Budgets:    budgets.New(th.Budgets()).CalculateAll(data.Budgets, data.Transactions, now),
		Streaks:    insights.Streaks(data.Transactions, now),
		Year:       yearreview.New(th.StableBand).Build(data.Transactions, data.Categories, year),
		Due:        recurrence.FindDue(data.RecurringRules, now),
		Categories: models.NewCategoryIndex(data.Categories),
	}
}

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	box     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7d56f4")),
		heading: r.NewStyle().Bold(true).Underline(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("#828282")).Width(22),
		good:    r.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#eab308")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		box:     r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Render writes the report to w. Colors are only emitted when w is a
// terminal.
func Render(w io.Writer, rep Report) error {
	st := newStyles(lipgloss.NewRenderer(w))
	p := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	money := func(v float64) string { return p.Sprintf("$%.2f", v) }

	var sections []string

	// Health
	var b strings.Builder
	b.WriteString(st.heading.Render("Financial health") + "\n")
	gradeStyle := st.good
	switch rep.Health.Grade {
	case models.GradeFair:
		gradeStyle = st.warn
	case models.GradePoor:
		gradeStyle = st.bad
	}
	b.WriteString(fmt.Sprintf("%s%s\n", st.label.Render("Overall"),
		gradeStyle.Render(fmt.Sprintf("%d/100 (%s)", rep.Health.Overall, title.String(string(rep.Health.Grade))))))
	for _, c := range rep.Health.Components {
		b.WriteString(fmt.Sprintf("%s%3d  x%.2f\n", st.label.Render(c.Label), c.Score, c.Weight))
	}
	sections = append(sections, st.box.Render(strings.TrimRight(b.String(), "\n")))

	// Budgets
	b.Reset()
	b.WriteString(st.heading.Render("Budgets") + "\n")
	if len(rep.Budgets) == 0 {
		b.WriteString("No active budgets\n")
	}
	for _, s := range rep.Budgets {
		style := st.good
		switch s.Pacing {
		case models.PacingAhead:
			style = st.warn
		case models.PacingOver:
			style = st.bad
		}
		name := rep.Categories.NameOr(s.Budget.CategoryID, models.UnknownCategoryName)
		b.WriteString(fmt.Sprintf("%s%s of %s  %s\n", st.label.Render(name),
			money(s.Spent), money(s.Budget.Amount), style.Render(s.PacingLabel)))
	}
	sections = append(sections, st.box.Render(strings.TrimRight(b.String(), "\n")))

	// Streaks
	b.Reset()
	b.WriteString(st.heading.Render("Streaks (last 30 days)") + "\n")
	b.WriteString(p.Sprintf("%s%d days\n", st.label.Render("No-spend streak"), rep.Streaks.NoSpendStreak))
	b.WriteString(p.Sprintf("%s%d days\n", st.label.Render("Under daily average"), rep.Streaks.UnderAverageStreak))
	b.WriteString(fmt.Sprintf("%s%s", st.label.Render("Daily average"), money(rep.Streaks.DailyAverage)))
	sections = append(sections, st.box.Render(b.String()))

	// Due recurring
	if len(rep.Due) > 0 {
		b.Reset()
		b.WriteString(st.heading.Render("Recurring due") + "\n")
		for _, d := range rep.Due {
			tmpl := d.Rule.TransactionTemplate
			b.WriteString(fmt.Sprintf("%s%s on %s\n", st.label.Render(tmpl.Description),
				money(tmpl.Amount), strings.Join(d.DueDates, ", ")))
		}
		sections = append(sections, st.box.Render(strings.TrimRight(b.String(), "\n")))
	}

	// Year in review
	b.Reset()
	y := rep.Year
	b.WriteString(st.heading.Render(fmt.Sprintf("%d in review", y.Year)) + "\n")
	b.WriteString(fmt.Sprintf("%s%s\n", st.label.Render("Income"), money(y.TotalIncome)))
	b.WriteString(fmt.Sprintf("%s%s\n", st.label.Render("Expenses"), money(y.TotalExpenses)))
	net := st.good
	if y.TotalNet < 0 {
		net = st.bad
	}
	b.WriteString(fmt.Sprintf("%s%s\n", st.label.Render("Net"), net.Render(money(y.TotalNet))))
	if y.BestMonth != nil {
		b.WriteString(fmt.Sprintf("%s%s (%s)\n", st.label.Render("Best month"), y.BestMonth.Month, money(y.BestMonth.Net)))
	}
	if y.WorstMonth != nil {
		b.WriteString(fmt.Sprintf("%s%s (%s)\n", st.label.Render("Worst month"), y.WorstMonth.Month, money(y.WorstMonth.Net)))
	}
	if y.TopMerchant != nil {
		b.WriteString(fmt.Sprintf("%s%s (%s)\n", st.label.Render("Top merchant"), y.TopMerchant.Name, money(y.TopMerchant.Total)))
	}
	for _, tr := range y.CategoryTrends {
		b.WriteString(fmt.Sprintf("%s%s %+.0f%%\n", st.label.Render(tr.CategoryName), tr.Trend, tr.PercentChange))
	}
	sections = append(sections, st.box.Render(strings.TrimRight(b.String(), "\n")))

	header := st.title.Render("budgetlens report for " + rep.Date.Format("Monday, January 2, 2006"))
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, sections...)...))
	return err
}
