package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmail(t *testing.T) {
	svc := NewService("../../templates/email", "../../templates/text")

	htmlBody, textBody, err := svc.RenderEmail(EmailData{
		DisplayName: "Pat",
		Title:       "Upcoming appointment",
		Body:        "Tomorrow at 9am",
		ActionURL:   "https://portal.example.com/appointments/42",
	})

	require.NoError(t, err)
	assert.Contains(t, htmlBody, "Upcoming appointment")
	assert.Contains(t, htmlBody, "Tomorrow at 9am")
	assert.Contains(t, htmlBody, "https://portal.example.com/appointments/42")
	assert.Contains(t, textBody, "Upcoming appointment")
	assert.Contains(t, textBody, "https://portal.example.com/appointments/42")
}

func TestRenderEmail_EscapesHTML(t *testing.T) {
	svc := NewService("../../templates/email", "../../templates/text")

	htmlBody, _, err := svc.RenderEmail(EmailData{
		DisplayName: "Pat",
		Title:       "<script>alert(1)</script>",
		Body:        "body",
		ActionURL:   "https://portal.example.com",
	})

	require.NoError(t, err)
	assert.NotContains(t, htmlBody, "<script>alert(1)</script>")
}

func TestRenderEmail_MissingTemplateDir(t *testing.T) {
	svc := NewService("/nonexistent/email", "/nonexistent/text")

	_, _, err := svc.RenderEmail(EmailData{Title: "x", Body: "y"})
	assert.Error(t, err)
}
