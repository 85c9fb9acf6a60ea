package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *MailerSendClient) SendListingReviewed(ctx context.Context, n ReviewNotice) error {
	if !m.enabled {
		return errors.New("MailerSend not configured")
	}

	var text, body string
	if n.Approved {
		text = fmt.Sprintf("Hi %s,\n\n%s has been approved and now appears in search results.", n.ToName, n.PropertyName)
		body = fmt.Sprintf(`
		<h2>Your listing is live</h2>
		<p>Hi %s,</p>
		<p><strong>%s</strong> has been approved and now appears in search results.</p>`,
			html.EscapeString(n.ToName), html.EscapeString(n.PropertyName))
	} else {
		text = fmt.Sprintf("Hi %s,\n\n%s was not approved yet.", n.ToName, n.PropertyName)
		body = fmt.Sprintf(`
		<h2>Your listing needs changes</h2>
		<p>Hi %s,</p>
		<p><strong>%s</strong> was not approved yet.</p>`,
			html.EscapeString(n.ToName), html.EscapeString(n.PropertyName))
	}
	if note := strings.TrimSpace(n.Note); note != "" {
		text += "\n\nReviewer note: " + note
		body += fmt.Sprintf("\n\t\t<p>Reviewer note: %s</p>", html.EscapeString(note))
	}

	return m.sendEmail(ctx, n.ToEmail, n.ToName, subjectFor(n), text, body)
}

func (m *MailerSendClient) SendListingSubmitted(ctx context.Context, n SubmissionNotice) error {
	if !m.enabled {
		return errors.New("MailerSend not configured")
	}
	subject := fmt.Sprintf("New listing to review: %s", n.PropertyName)
	text := fmt.Sprintf("%s (%s) was submitted with a checklist score of %d/100.", n.PropertyName, n.ListingID, n.Score)
	body := fmt.Sprintf(`
		<h2>New listing to review</h2>
		<p><strong>%s</strong> (%s) was submitted with a checklist score of %d/100.</p>`,
		html.EscapeString(n.PropertyName), html.EscapeString(n.ListingID), n.Score)
	return m.sendEmail(ctx, n.ToEmail, "", subject, text, body)
}

func (m *MailerSendClient) sendEmail(ctx context.Context, toEmail, toName, subject, text, htmlBody string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(htmlBody) != "" {
		msg.SetHTML(htmlBody)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
