package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/domain"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"board"},
	Short:   "Show counts per column and the board",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()
		return renderDashboard(cmd.OutOrStdout(), a.coll.Tasks())
	},
}

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show tasks by due date for one month",
	Args:    cobra.NoArgs,
	RunE:    runCalendar,
}

func init() {
	calendarCmd.Flags().String("month", "", "Month to show as YYYY-MM (default: this month)")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("month")
	month := now()
	if raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return domain.Invalid("invalid month %q, expected YYYY-MM", raw)
		}
		month = parsed
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	cal := domain.BuildCalendarMonth(a.coll.Tasks(), month.Year(), month.Month())
	return renderCalendar(cmd.OutOrStdout(), cal)
}
