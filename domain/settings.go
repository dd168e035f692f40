package domain

type ThemeColor string

const (
	ThemeBlue   ThemeColor = "blue"
	ThemePurple ThemeColor = "purple"
	ThemeGreen  ThemeColor = "green"
	ThemeOrange ThemeColor = "orange"
	ThemePink   ThemeColor = "pink"
)

func (c ThemeColor) Valid() bool {
	switch c {
	case ThemeBlue, ThemePurple, ThemeGreen, ThemeOrange, ThemePink:
		return true
	default:
		return false
	}
}

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

func (f FontSize) Valid() bool {
	switch f {
	case FontSmall, FontMedium, FontLarge:
		return true
	default:
		return false
	}
}

type UserProfile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

type AppearanceSettings struct {
	DarkMode   bool       `json:"darkMode"`
	ThemeColor ThemeColor `json:"themeColor"`
	FontSize   FontSize   `json:"fontSize"`
}

type NotificationSettings struct {
	DueDateReminders     bool `json:"dueDateReminders"`
	WeeklySummary        bool `json:"weeklySummary"`
	EmailNotifications   bool `json:"emailNotifications"`
	TaskAssignmentAlerts bool `json:"taskAssignmentAlerts"`
	PushNotifications    bool `json:"pushNotifications"`
}

// UserSettings groups the locally persisted preferences.
type UserSettings struct {
	Profile       UserProfile          `json:"profile"`
	Appearance    AppearanceSettings   `json:"appearance"`
	Notifications NotificationSettings `json:"notifications"`
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() UserSettings {
	return UserSettings{
		Profile: UserProfile{
			Name:   "John Doe",
			Email:  "john@example.com",
			Avatar: DefaultAvatar,
		},
		Appearance: AppearanceSettings{
			DarkMode:   false,
			ThemeColor: ThemeBlue,
			FontSize:   FontMedium,
		},
		Notifications: NotificationSettings{
			DueDateReminders:     true,
			WeeklySummary:        false,
			EmailNotifications:   true,
			TaskAssignmentAlerts: true,
			PushNotifications:    false,
		},
	}
}

type ProfilePatch struct {
	Name   *string
	Email  *string
	Avatar *string
}

func (p ProfilePatch) Apply(v UserProfile) UserProfile {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Email != nil {
		v.Email = *p.Email
	}
	if p.Avatar != nil {
		v.Avatar = *p.Avatar
	}
	return v
}

type AppearancePatch struct {
	DarkMode   *bool
	ThemeColor *ThemeColor
	FontSize   *FontSize
}

func (p AppearancePatch) Validate() error {
	if p.ThemeColor != nil && !p.ThemeColor.Valid() {
		return Invalid("unknown theme color %q", *p.ThemeColor)
	}
	if p.FontSize != nil && !p.FontSize.Valid() {
		return Invalid("unknown font size %q", *p.FontSize)
	}
	return nil
}

func (p AppearancePatch) Apply(v AppearanceSettings) AppearanceSettings {
	if p.DarkMode != nil {
		v.DarkMode = *p.DarkMode
	}
	if p.ThemeColor != nil {
		v.ThemeColor = *p.ThemeColor
	}
	if p.FontSize != nil {
		v.FontSize = *p.FontSize
	}
	return v
}

type NotificationPatch struct {
	DueDateReminders     *bool
	WeeklySummary        *bool
	EmailNotifications   *bool
	TaskAssignmentAlerts *bool
	PushNotifications    *bool
}

func (p NotificationPatch) Apply(v NotificationSettings) NotificationSettings {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&v.DueDateReminders, p.DueDateReminders)
	set(&v.WeeklySummary, p.WeeklySummary)
	set(&v.EmailNotifications, p.EmailNotifications)
	set(&v.TaskAssignmentAlerts, p.TaskAssignmentAlerts)
	set(&v.PushNotifications, p.PushNotifications)
	return v
}
