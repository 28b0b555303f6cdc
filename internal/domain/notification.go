package domain

import "time"

// Channel is one of the three delivery mechanisms.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// DeliveryStatus is the outcome recorded for one channel attempt.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)

// Notification is one in-app inbox entry. The engine only ever appends
// these; the inbox marks them read or hides them later.
type Notification struct {
	ID         int64                  `json:"id"`
	RequestID  string                 `json:"request_id"`
	UserID     string                 `json:"user_id"`
	EventKind  string                 `json:"event_kind"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	Severity   string                 `json:"severity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ActionURL  string                 `json:"action_url,omitempty"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityID   string                 `json:"entity_id,omitempty"`
	Read       bool                   `json:"read"`
	CreatedAt  time.Time              `json:"created_at"`
}

// DeliveryLog is one append-only row per channel evaluated in a dispatch
// call. NotificationID is nil when the in-app write failed or never ran;
// UserID is empty for guest sends.
type DeliveryLog struct {
	ID             int64
	NotificationID *int64
	UserID         string
	Channel        Channel
	Status         DeliveryStatus
	ExternalID     string
	ErrorMessage   string
	CreatedAt      time.Time
}

// ChannelPreference holds a user's per-preference-key channel toggles.
// A missing row means all channels enabled (opt-out model).
type ChannelPreference struct {
	UserID        string `json:"user_id"`
	PreferenceKey string `json:"preference_key"`
	EmailEnabled  bool   `json:"email_enabled"`
	SMSEnabled    bool   `json:"sms_enabled"`
	InAppEnabled  bool   `json:"in_app_enabled"`
}

// OpenChannelPreference is the default applied when no row exists or the
// lookup fails: every channel enabled.
func OpenChannelPreference(userID, preferenceKey string) *ChannelPreference {
	return &ChannelPreference{
		UserID:        userID,
		PreferenceKey: preferenceKey,
		EmailEnabled:  true,
		SMSEnabled:    true,
		InAppEnabled:  true,
	}
}

// AllDisabled reports whether the user has opted out of every channel.
func (p *ChannelPreference) AllDisabled() bool {
	return !p.EmailEnabled && !p.SMSEnabled && !p.InAppEnabled
}

// PracticeAutomationSettings controls whether automation-classified events
// (reminders, follow-ups) may use the practice's email/SMS channels.
// Absent settings default to enabled on both.
type PracticeAutomationSettings struct {
	PracticeID   string
	EmailEnabled bool
	SMSEnabled   bool
}

func OpenAutomationSettings(practiceID string) *PracticeAutomationSettings {
	return &PracticeAutomationSettings{
		PracticeID:   practiceID,
		EmailEnabled: true,
		SMSEnabled:   true,
	}
}

// Profile is the recipient's durable account record.
type Profile struct {
	UserID      string
	Email       string
	DisplayName string
	Phone       string
}

// Contact is the resolved delivery target for one dispatch call.
// PracticeID is empty when the user is linked to no practice, in which
// case automation settings default to enabled.
type Contact struct {
	Email       string
	DisplayName string
	Phone       string
	PracticeID  string
}
