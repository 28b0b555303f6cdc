package usecase

import (
	"testing"

	"portal-notification-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func fullContact() domain.Contact {
	return domain.Contact{
		Email:       "pat@example.com",
		DisplayName: "Pat",
		Phone:       "+15551234567",
		PracticeID:  "prac1",
	}
}

func TestEvaluatePolicy_AllOpen(t *testing.T) {
	d := EvaluatePolicy(
		domain.ClassifyEvent("message_received"),
		domain.OpenChannelPreference("user1", "messages"),
		fullContact(),
		domain.OpenAutomationSettings("prac1"))

	assert.True(t, d.InApp.Deliver)
	assert.True(t, d.Email.Deliver)
	assert.True(t, d.SMS.Deliver)
}

func TestEvaluatePolicy_UserPreferenceVetoesEveryChannel(t *testing.T) {
	pref := &domain.ChannelPreference{
		UserID:        "user1",
		PreferenceKey: "messages",
	}

	d := EvaluatePolicy(
		domain.ClassifyEvent("message_received"),
		pref,
		fullContact(),
		domain.OpenAutomationSettings("prac1"))

	assert.False(t, d.InApp.Deliver)
	assert.Equal(t, ReasonInAppUserDisabled, d.InApp.Reason)
	assert.False(t, d.Email.Deliver)
	assert.Equal(t, ReasonEmailUserDisabled, d.Email.Reason)
	assert.False(t, d.SMS.Deliver)
	assert.Equal(t, ReasonSMSUserDisabled, d.SMS.Reason)
}

func TestEvaluatePolicy_PracticeSuppressesOnlyAutomation(t *testing.T) {
	pref := domain.OpenChannelPreference("user1", "appointments")
	practice := &domain.PracticeAutomationSettings{PracticeID: "prac1"}

	// automation event: both contact channels suppressed, in-app untouched
	auto := EvaluatePolicy(domain.ClassifyEvent("appointment_reminder"), pref, fullContact(), practice)
	assert.True(t, auto.InApp.Deliver)
	assert.False(t, auto.Email.Deliver)
	assert.Equal(t, ReasonEmailPracticeDisabled, auto.Email.Reason)
	assert.False(t, auto.SMS.Deliver)
	assert.Equal(t, ReasonSMSPracticeDisabled, auto.SMS.Reason)

	// user-driven event with the same practice settings: fully delivered
	userDriven := EvaluatePolicy(domain.ClassifyEvent("message_received"), pref, fullContact(), practice)
	assert.True(t, userDriven.Email.Deliver)
	assert.True(t, userDriven.SMS.Deliver)
}

func TestEvaluatePolicy_UserVetoOutranksPracticeReason(t *testing.T) {
	pref := domain.OpenChannelPreference("user1", "appointments")
	pref.EmailEnabled = false
	practice := &domain.PracticeAutomationSettings{PracticeID: "prac1"}

	d := EvaluatePolicy(domain.ClassifyEvent("appointment_reminder"), pref, fullContact(), practice)

	assert.Equal(t, ReasonEmailUserDisabled, d.Email.Reason)
}

func TestEvaluatePolicy_MissingContactSkips(t *testing.T) {
	d := EvaluatePolicy(
		domain.ClassifyEvent("message_received"),
		domain.OpenChannelPreference("user1", "messages"),
		domain.Contact{DisplayName: "Pat"},
		domain.OpenAutomationSettings(""))

	assert.True(t, d.InApp.Deliver)
	assert.False(t, d.Email.Deliver)
	assert.Equal(t, ReasonNoEmailAddress, d.Email.Reason)
	assert.False(t, d.SMS.Deliver)
	assert.Equal(t, ReasonNoPhoneNumber, d.SMS.Reason)
}

func TestEvaluatePolicy_SecurityAlertNeverPracticeSuppressed(t *testing.T) {
	practice := &domain.PracticeAutomationSettings{PracticeID: "prac1"}

	d := EvaluatePolicy(
		domain.ClassifyEvent("security_alert"),
		domain.OpenChannelPreference("user1", "security"),
		fullContact(),
		practice)

	assert.True(t, d.Email.Deliver)
	assert.True(t, d.SMS.Deliver)
}
