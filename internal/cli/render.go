package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// now is swapped in tests.
var now = time.Now

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func progressText(t domain.Task) string {
	ratio, ok := t.Progress()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d/%d (%d%%)", t.CompletedSubTasks(), len(t.SubTasks), int(math.Round(ratio*100)))
}

func assigneeText(t domain.Task) string {
	if t.Assignee == nil {
		return "-"
	}
	if t.Assignee.Avatar != "" {
		return t.Assignee.Avatar + " " + t.Assignee.Name
	}
	return t.Assignee.Name
}

func dueText(t domain.Task, at time.Time) string {
	due := domain.FormatDate(t.DueDate)
	if t.IsOverdue(at) {
		due += " (overdue)"
	}
	return due
}

func renderTasks(w io.Writer, tasks []domain.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return nil
	}
	at := now()
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE\tSUBTASKS\tASSIGNEE\tTAGS")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID),
			t.Status.Label(),
			t.Priority,
			dueText(t, at),
			t.Title,
			progressText(t),
			assigneeText(t),
			strings.Join(t.Tags, ", "))
	}
	return tw.Flush()
}

func renderTask(w io.Writer, t domain.Task) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status.Label())
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Due:\t%s\n", dueText(t, now()))
	if !t.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(tw, "Assignee:\t%s\n", assigneeText(t))
	if len(t.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(t.Tags, ", "))
	}
	if t.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Progress:\t%s\n", progressText(t))
	if err := tw.Flush(); err != nil {
		return err
	}

	for i, st := range t.SubTasks {
		mark := " "
		if st.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  %d. [%s] %s  (%s)\n", i+1, mark, st.Title, shortID(st.ID))
	}
	return nil
}

func renderDashboard(w io.Writer, tasks []domain.Task) error {
	at := now()
	s := domain.Summarize(tasks, at)

	tw := newTable(w)
	fmt.Fprintln(tw, "TOTAL\tTO DO\tIN PROGRESS\tCOMPLETED\tOVERDUE\tDONE")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d%%\n", s.Total, s.Todo, s.Doing, s.Done, s.Overdue, s.CompletionRate)
	if err := tw.Flush(); err != nil {
		return err
	}

	cols := domain.ByStatus(tasks)
	for _, status := range domain.Statuses {
		col := cols[status]
		fmt.Fprintf(w, "\n%s (%d)\n", status.Label(), len(col))
		for _, t := range col {
			line := fmt.Sprintf("  %s  %-6s  %s", shortID(t.ID), t.Priority, t.Title)
			if t.IsOverdue(at) {
				line += "  [overdue]"
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

var weekdays = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

func renderCalendar(w io.Writer, cal domain.CalendarMonth) error {
	fmt.Fprintf(w, "%s %d\n", cal.Month, cal.Year)
	fmt.Fprintln(w, strings.Join(weekdays, "   "))

	col := 0
	var row strings.Builder
	flush := func() {
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
		row.Reset()
		col = 0
	}
	for i := 0; i < cal.Offset; i++ {
		row.WriteString("     ")
		col++
	}
	for _, day := range cal.Days {
		mark := " "
		if len(day.Tasks) > 0 {
			mark = "*"
		}
		fmt.Fprintf(&row, "%2d%s  ", day.Date.Day(), mark)
		col++
		if col == 7 {
			flush()
		}
	}
	if col > 0 {
		flush()
	}

	at := now()
	for _, day := range cal.Days {
		if len(day.Tasks) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", domain.FormatDate(day.Date))
		for _, t := range day.Tasks {
			line := fmt.Sprintf("  %s  %-11s  %s", shortID(t.ID), t.Status.Label(), t.Title)
			if t.IsOverdue(at) {
				line += "  [overdue]"
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func renderSettings(w io.Writer, s domain.UserSettings) error {
	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "Profile")
	fmt.Fprintf(tw, "  name\t%s\n", s.Profile.Name)
	fmt.Fprintf(tw, "  email\t%s\n", s.Profile.Email)
	fmt.Fprintf(tw, "  avatar\t%s\n", s.Profile.Avatar)
	fmt.Fprintln(tw, "Appearance")
	fmt.Fprintf(tw, "  dark mode\t%s\n", onOff(s.Appearance.DarkMode))
	fmt.Fprintf(tw, "  theme\t%s\n", s.Appearance.ThemeColor)
	fmt.Fprintf(tw, "  font size\t%s\n", s.Appearance.FontSize)
	fmt.Fprintln(tw, "Notifications")
	fmt.Fprintf(tw, "  due date reminders\t%s\n", onOff(s.Notifications.DueDateReminders))
	fmt.Fprintf(tw, "  weekly summary\t%s\n", onOff(s.Notifications.WeeklySummary))
	fmt.Fprintf(tw, "  email\t%s\n", onOff(s.Notifications.EmailNotifications))
	fmt.Fprintf(tw, "  task assignment alerts\t%s\n", onOff(s.Notifications.TaskAssignmentAlerts))
	fmt.Fprintf(tw, "  push\t%s\n", onOff(s.Notifications.PushNotifications))
	return tw.Flush()
}
