package template

import (
	"bytes"
	"fmt"
	"html/template"
	texttmpl "text/template"
	"time"
)

// EmailData is the field set every notification email is rendered from.
type EmailData struct {
	DisplayName string
	Title       string
	Body        string
	ActionURL   string
	Year        int
}

// Service renders the HTML and plain-text bodies for the email channel.
// Templates are parsed per render so edits land without a restart.
type Service struct {
	emailPath string
	textPath  string
}

func NewService(emailPath, textPath string) *Service {
	return &Service{
		emailPath: emailPath,
		textPath:  textPath,
	}
}

// RenderEmail returns the HTML body and its plain-text alternative.
func (t *Service) RenderEmail(data EmailData) (string, string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	basePath := fmt.Sprintf("%s/base.html", t.emailPath)
	bodyPath := fmt.Sprintf("%s/notification.html", t.emailPath)

	htmlTmpl, err := template.ParseFiles(basePath, bodyPath)
	if err != nil {
		return "", "", fmt.Errorf("parse email templates: %w", err)
	}

	var htmlBuf bytes.Buffer
	if err := htmlTmpl.ExecuteTemplate(&htmlBuf, "base.html", data); err != nil {
		return "", "", fmt.Errorf("execute email template: %w", err)
	}

	textPath := fmt.Sprintf("%s/notification.txt", t.textPath)
	textTmpl, err := texttmpl.ParseFiles(textPath)
	if err != nil {
		return "", "", fmt.Errorf("parse text template: %w", err)
	}

	var textBuf bytes.Buffer
	if err := textTmpl.ExecuteTemplate(&textBuf, "notification.txt", data); err != nil {
		return "", "", fmt.Errorf("execute text template: %w", err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}
