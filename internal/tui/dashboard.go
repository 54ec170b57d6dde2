package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mirror/internal/state"
)

// activityDays is how many days the journal chart covers, today included.
const activityDays = 7

type dashboardModel struct {
	width  int
	height int

	snap state.Snapshot
	now  time.Time

	progress progress.Model
	chart    barchart.Model
}

func newDashboardModel() dashboardModel {
	return dashboardModel{
		progress: progress.New(progress.WithGradient(string(colorPrimary), string(colorSecondary))),
		chart:    barchart.New(60, 10),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.progress.Width = max(10, w-16)
	d.buildChart()
}

func (d *dashboardModel) setSnapshot(snap state.Snapshot, now time.Time) {
	d.snap = snap
	d.now = now
	d.buildChart()
}

// journalActivity counts journal entries per local day for the last
// activityDays days, oldest first.
func journalActivity(entries []state.JournalEntry, now time.Time) []int {
	now = now.Local()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	first := today.AddDate(0, 0, -(activityDays - 1))

	counts := make([]int, activityDays)
	for _, e := range entries {
		t := e.Date.Local()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		if day.Before(first) || day.After(today) {
			continue
		}
		// Round to absorb DST days that are not 24h long.
		idx := int(math.Round(day.Sub(first).Hours() / 24))
		counts[idx]++
	}
	return counts
}

func (d *dashboardModel) buildChart() {
	chartWidth := max(20, d.width-8)
	chartHeight := 10
	if d.height > 30 {
		chartHeight = 14
	}

	d.chart = barchart.New(chartWidth, chartHeight)

	now := d.now
	if now.IsZero() {
		now = time.Now()
	}
	counts := journalActivity(d.snap.JournalEntries, now)
	first := now.Local().AddDate(0, 0, -(activityDays - 1))

	var bars []barchart.BarData
	for i, n := range counts {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if n == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: first.AddDate(0, 0, i).Format("Mon"),
			Values: []barchart.BarValue{
				{Name: "entries", Value: float64(n), Style: style},
			},
		})
	}

	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	w := d.width - 4

	// Stat row
	statW := w/3 - 2
	if statW < 16 {
		statW = w
	}
	streak := d.renderStat(statW, "Streak", fmt.Sprintf("%d", d.snap.Streak), "times shown up")
	journal := d.renderStat(statW, "Journal", fmt.Sprintf("%d", len(d.snap.JournalEntries)), "entries")
	voice := d.renderStat(statW, "Voice Notes", fmt.Sprintf("%d", len(d.snap.VoiceNotes)), "messages to you")

	var stats string
	if statW == w {
		stats = lipgloss.JoinVertical(lipgloss.Left, streak, journal, voice)
	} else {
		stats = lipgloss.JoinHorizontal(lipgloss.Top, streak, " ", journal, " ", voice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		stats,
		d.renderProgressPanel(w),
		d.renderActivityPanel(w),
	)
}

func (d dashboardModel) renderStat(w int, label, value, caption string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		mutedStyle.Render(label),
		highlightStyle.Bold(true).Render(value),
		mutedStyle.Render(caption),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderProgressPanel(w int) string {
	completed, total := d.snap.Progress()
	title := titleStyle.Render("Today's Non-Negotiables")

	if total == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing set for today"),
		))
	}

	pct := float64(completed) / float64(total)
	counter := mutedStyle.Render(fmt.Sprintf("%d of %d complete", completed, total))

	var rows []string
	rows = append(rows, title, d.progress.ViewAs(pct), counter)
	for _, t := range d.snap.Tasks {
		mark := mutedStyle.Render("○")
		if t.Completed {
			mark = successStyle.Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %s", mark, t.Text))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderActivityPanel(w int) string {
	title := titleStyle.Render("Journal activity")
	sub := mutedStyle.Render(fmt.Sprintf("last %d days", activityDays))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", sub),
		"",
		d.chart.View(),
	))
}
