package usecase

import "portal-notification-service/internal/domain"

// Decline reasons surfaced in DispatchResult.Errors. Stable strings; the
// workflow callers pattern-match on them.
const (
	ReasonInAppUserDisabled = "in_app disabled by user preference"
	ReasonEmailUserDisabled = "email disabled by user preference"
	ReasonSMSUserDisabled   = "sms disabled by user preference"

	ReasonEmailPracticeDisabled = "email suppressed by practice automation settings"
	ReasonSMSPracticeDisabled   = "sms suppressed by practice automation settings"

	ReasonNoEmailAddress = "no email address on file"
	ReasonNoPhoneNumber  = "no phone number on file"
)

// ChannelDecision is the final verdict for one channel. Reason is set only
// when Deliver is false.
type ChannelDecision struct {
	Deliver bool
	Reason  string
}

// PolicyDecision carries the per-channel verdicts for one dispatch call.
type PolicyDecision struct {
	InApp ChannelDecision
	Email ChannelDecision
	SMS   ChannelDecision
}

// EvaluatePolicy combines classification, user preference, resolved contact
// info and practice automation settings into the final per-channel booleans.
//
// The user preference is an absolute veto on every channel for every event
// kind. Practice automation settings can only suppress channels for
// automation-classified events; a user-driven event (message, order,
// payment, security alert) is never suppressed by the practice.
func EvaluatePolicy(
	class domain.EventClassification,
	pref *domain.ChannelPreference,
	contact domain.Contact,
	practice *domain.PracticeAutomationSettings,
) PolicyDecision {
	var d PolicyDecision

	// in-app has no contact or practice dimension: identity is the address.
	switch {
	case !pref.InAppEnabled:
		d.InApp = ChannelDecision{Reason: ReasonInAppUserDisabled}
	default:
		d.InApp = ChannelDecision{Deliver: true}
	}

	switch {
	case !pref.EmailEnabled:
		d.Email = ChannelDecision{Reason: ReasonEmailUserDisabled}
	case class.IsAutomation && !practice.EmailEnabled:
		d.Email = ChannelDecision{Reason: ReasonEmailPracticeDisabled}
	case contact.Email == "":
		d.Email = ChannelDecision{Reason: ReasonNoEmailAddress}
	default:
		d.Email = ChannelDecision{Deliver: true}
	}

	switch {
	case !pref.SMSEnabled:
		d.SMS = ChannelDecision{Reason: ReasonSMSUserDisabled}
	case class.IsAutomation && !practice.SMSEnabled:
		d.SMS = ChannelDecision{Reason: ReasonSMSPracticeDisabled}
	case contact.Phone == "":
		d.SMS = ChannelDecision{Reason: ReasonNoPhoneNumber}
	default:
		d.SMS = ChannelDecision{Deliver: true}
	}

	return d
}
