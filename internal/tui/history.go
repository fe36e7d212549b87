package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

const historyMonths = 12

type historyModel struct {
	store  *store.Store
	width  int
	height int

	months []store.MonthlyCompletions
	recent []store.Completion
	titles map[string]string

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := historyRange(time.Now())
		months, _ := h.store.CompletionsByMonth(from, to)
		recent, _ := h.store.ListCompletions("", 10)

		titles := make(map[string]string)
		if tasks, err := h.store.GetAllTasks(); err == nil {
			for _, t := range tasks {
				titles[t.ID] = t.Title
			}
		}

		return historyDataMsg{months: months, recent: recent, titles: titles}
	}
}

// historyRange is the last historyMonths whole months up to and including
// the current one.
func historyRange(now time.Time) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	start := end.AddDate(0, -historyMonths, 0)
	return start, end
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.months = msg.months
		h.recent = msg.recent
		h.titles = msg.titles
		h.buildChart()
		return h, nil
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	counts := make(map[string]int, len(h.months))
	for _, m := range h.months {
		counts[m.Month] = m.Count
	}

	from, to := historyRange(time.Now())
	var bars []barchart.BarData
	for m := from; m.Before(to); m = m.AddDate(0, 1, 0) {
		label := m.Format("Jan")
		value := float64(counts[m.Format("2006-01")])

		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if value == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: "completions", Value: value, Style: style},
			},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	title := titleStyle.Render("Completion History")
	subtitle := mutedStyle.Render(fmt.Sprintf("last %d months", historyMonths))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", subtitle)

	chartView := h.chart.View()
	tableView := h.renderRecent(w)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", chartView, "", tableView),
	)
}

func (h historyModel) renderRecent(w int) string {
	title := titleStyle.Render("Recent completions")
	if len(h.recent) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("  Nothing completed yet"))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-28s %s", "Date", "Task", "Odometer")))

	for _, c := range h.recent {
		name := c.TaskID
		if t, ok := h.titles[c.TaskID]; ok {
			name = t
		}
		rows = append(rows, fmt.Sprintf("  %-12s %-28s %s",
			formatDate(c.PerformedAt),
			truncate(name, 28),
			formatOdometer(c.Odometer),
		))
	}

	return strings.Join(rows, "\n")
}
