package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fastygo/taskboard/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change your preferences",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show preferences",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Change profile fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		patch := domain.ProfilePatch{
			Name:   stringFlag(f, "name"),
			Email:  stringFlag(f, "email"),
			Avatar: stringFlag(f, "avatar"),
		}
		return updateSettings(cmd, func(a *app) (domain.UserSettings, error) {
			return a.prefs.UpdateProfile(patch)
		})
	},
}

var settingsAppearanceCmd = &cobra.Command{
	Use:   "appearance",
	Short: "Change theme, font size or dark mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		patch := domain.AppearancePatch{DarkMode: boolFlag(f, "dark")}
		if v := stringFlag(f, "theme"); v != nil {
			theme := domain.ThemeColor(*v)
			patch.ThemeColor = &theme
		}
		if v := stringFlag(f, "font"); v != nil {
			font := domain.FontSize(*v)
			patch.FontSize = &font
		}
		if err := patch.Validate(); err != nil {
			return err
		}
		return updateSettings(cmd, func(a *app) (domain.UserSettings, error) {
			return a.prefs.UpdateAppearance(patch)
		})
	},
}

var settingsNotificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Turn notification kinds on or off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		patch := domain.NotificationPatch{
			DueDateReminders:     boolFlag(f, "due-reminders"),
			WeeklySummary:        boolFlag(f, "weekly-summary"),
			EmailNotifications:   boolFlag(f, "email"),
			TaskAssignmentAlerts: boolFlag(f, "assignment-alerts"),
			PushNotifications:    boolFlag(f, "push"),
		}
		return updateSettings(cmd, func(a *app) (domain.UserSettings, error) {
			return a.prefs.UpdateNotifications(patch)
		})
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateSettings(cmd, func(a *app) (domain.UserSettings, error) {
			return a.prefs.Reset()
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsProfileCmd)
	settingsCmd.AddCommand(settingsAppearanceCmd)
	settingsCmd.AddCommand(settingsNotificationsCmd)
	settingsCmd.AddCommand(settingsResetCmd)

	settingsProfileCmd.Flags().String("name", "", "Display name")
	settingsProfileCmd.Flags().String("email", "", "Email address")
	settingsProfileCmd.Flags().String("avatar", "", "Avatar glyph")

	settingsAppearanceCmd.Flags().Bool("dark", false, "Dark mode")
	settingsAppearanceCmd.Flags().String("theme", "", "Theme color: blue, purple, green, orange or pink")
	settingsAppearanceCmd.Flags().String("font", "", "Font size: small, medium or large")

	settingsNotificationsCmd.Flags().Bool("due-reminders", false, "Due date reminders")
	settingsNotificationsCmd.Flags().Bool("weekly-summary", false, "Weekly summary")
	settingsNotificationsCmd.Flags().Bool("email", false, "Email notifications")
	settingsNotificationsCmd.Flags().Bool("assignment-alerts", false, "Task assignment alerts")
	settingsNotificationsCmd.Flags().Bool("push", false, "Push notifications")
}

// stringFlag returns nil unless the flag was given.
func stringFlag(f *pflag.FlagSet, name string) *string {
	if !f.Changed(name) {
		return nil
	}
	v, _ := f.GetString(name)
	return &v
}

func boolFlag(f *pflag.FlagSet, name string) *bool {
	if !f.Changed(name) {
		return nil
	}
	v, _ := f.GetBool(name)
	return &v
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return renderSettings(cmd.OutOrStdout(), a.prefs.Settings())
}

func updateSettings(cmd *cobra.Command, fn func(*app) (domain.UserSettings, error)) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := fn(a)
	if err != nil {
		return err
	}
	return renderSettings(cmd.OutOrStdout(), settings)
}
