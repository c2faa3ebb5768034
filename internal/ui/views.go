package ui

import (
	"fmt"
	"strings"
	"time"

	"orbit-tracker/internal/domain"
)

const (
	barWidth   = 28
	notesWidth = 40
)

// Applications renders the list, one row per record in the order given.
func Applications(t Theme, apps []domain.Application) string {
	if len(apps) == 0 {
		return t.Muted.Render("No applications yet. Add one with: orbit add <company> <role>")
	}

	header := []string{"#", "ID", "COMPANY", "ROLE", "STATUS", "APPLIED", "NOTES"}
	rows := make([][]string, 0, len(apps))
	for i, a := range apps {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			shortID(a.ID),
			a.Company,
			a.Role,
			string(a.Status),
			a.CreatedAt.Local().Format("2006-01-02"),
			truncate(strings.ReplaceAll(a.Notes, "\n", " "), notesWidth),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if n := len([]rune(c)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(t.Title.Render(pad(h, widths[i])))
		if i < len(header)-1 {
			b.WriteString("  ")
		}
	}
	for ri, r := range rows {
		b.WriteString("\n")
		for i, c := range r {
			cell := pad(c, widths[i])
			switch i {
			case 1:
				cell = t.Muted.Render(cell)
			case 4:
				cell = t.Status(apps[ri].Status).Render(cell)
			}
			b.WriteString(cell)
			if i < len(r)-1 {
				b.WriteString("  ")
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Chart renders one bar per status with its count and share of the total.
func Chart(t Theme, apps []domain.Application) string {
	counts := map[domain.Status]int{}
	for _, a := range apps {
		counts[a.Status]++
	}
	total := len(apps)

	lines := []string{t.Title.Render(fmt.Sprintf("Applications by status (%d total)", total))}
	for _, st := range domain.AllStatuses() {
		n := counts[st]
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		lines = append(lines, fmt.Sprintf("%s %s %3d  %5.1f%%",
			pad(string(st), 12),
			t.Status(st).Render(bar(n, total, barWidth)),
			n, pct,
		))
	}
	return t.Border.Render(strings.Join(lines, "\n"))
}

// Reminders renders the reminder list with 1-based indexes. Open reminders
// dated before today are flagged.
func Reminders(t Theme, items []domain.Reminder, today time.Time) string {
	if len(items) == 0 {
		return t.Muted.Render("No reminders. Add one with: orbit remind add <YYYY-MM-DD> <text>")
	}
	day := today.Format(domain.DateLayout)

	var b strings.Builder
	for i, r := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		box := "☐"
		line := fmt.Sprintf("%s  %s", r.Date, r.Text)
		switch {
		case r.Done:
			box = "☑"
			line = t.Done.Render(line)
		case r.Date < day:
			line = t.Error.Render(line + "  (overdue)")
		case r.Date == day:
			line = t.Accent.Render(line + "  (today)")
		}
		fmt.Fprintf(&b, "%2d. %s %s", i+1, box, line)
	}
	return b.String()
}

func bar(n, total, width int) string {
	if total == 0 {
		total = 1
	}
	filled := int(float64(n) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
