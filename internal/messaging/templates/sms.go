package templates

// Default SMS bodies for patient links and dosing reminders. Callers pass
// the data struct matching the template's fields.
const (
	PortalLink = "Hi {{.FirstName}}! Here's your Range portal to track your progress and log your treatments: {{.URL}}"

	OnboardLink = "Hi {{.FirstName}}! Welcome to Range Medical. Take 2 minutes to set your goals and help us personalize your care: {{.URL}}"

	DosingReminder = "Hi {{.FirstName}}! Today is day {{.Day}} of your {{.Program}} protocol - a dosing day. Log it here: {{.URL}}"
)

// LinkData fills PortalLink and OnboardLink.
type LinkData struct {
	FirstName string
	URL       string
}

// ReminderData fills DosingReminder.
type ReminderData struct {
	FirstName string
	Day       int
	Program   string
	URL       string
}
