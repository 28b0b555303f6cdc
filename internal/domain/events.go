package domain

// EventClassification maps a raw event kind onto the preference key its
// toggles live under, and flags whether the event is practice automation
// (recurring reminders/follow-ups) as opposed to user-driven activity.
type EventClassification struct {
	PreferenceKey string
	IsAutomation  bool
}

// DefaultPreferenceKey is used for event kinds with no explicit mapping.
const DefaultPreferenceKey = "system_alerts"

// preferenceKeyByEvent is the static event-kind → preference-key table.
// Loaded once; never mutated at runtime.
var preferenceKeyByEvent = map[string]string{
	"appointment_booked":    "appointments",
	"appointment_cancelled": "appointments",
	"appointment_reminder":  "appointments",
	"appointment_follow_up": "appointments",
	"video_visit_ready":     "appointments",

	"message_received": "messages",

	"document_assigned":  "documents",
	"document_completed": "documents",
	"form_reminder":      "documents",

	"order_placed":    "orders",
	"order_shipped":   "orders",
	"payment_receipt": "orders",
	"payment_failed":  "orders",

	"ticket_updated": "support",

	"security_alert":   "security",
	"password_changed": "security",
	"new_device_login": "security",
}

// automationEvents is the fixed allow-list of recurring, system-scheduled
// kinds subject to practice-level suppression. Everything else, including
// messages, orders, payments, documents and security events, is
// user-driven and ignores practice automation settings.
var automationEvents = map[string]struct{}{
	"appointment_reminder":  {},
	"appointment_follow_up": {},
	"form_reminder":         {},
}

// ClassifyEvent is pure and total: every input yields a classification and
// it can neither fail nor block.
func ClassifyEvent(eventKind string) EventClassification {
	key, ok := preferenceKeyByEvent[eventKind]
	if !ok {
		key = DefaultPreferenceKey
	}
	_, automation := automationEvents[eventKind]
	return EventClassification{PreferenceKey: key, IsAutomation: automation}
}
