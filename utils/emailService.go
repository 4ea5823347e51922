package utils

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Attachment is a file attached to an outgoing email
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Notifier sends notification emails. All trigger methods are fire-and-forget:
// delivery failures are logged and never surface to the caller.
type Notifier interface {
	Send(htmlBody, to, subject string, attachments []Attachment) bool
	WelcomeOTP(email, name, otp string)
	CertificateIssued(email, name, courseTitle, artifactURL, verifyURL string)
	CertificateApproved(email, name, courseTitle, verifyURL string)
	CertificateRejected(email, name, courseTitle, reason string)
	CertificateRevoked(email, name, courseTitle, reason string)
	CertificateReinstated(email, name, courseTitle string)
	CertificateCopy(email, name, courseTitle, artifactURL string, attachments []Attachment)
	PendingApprovalReminder(email, name string, pending int, digest string)
}

// EmailDispatcher delivers mail through the Sendgrid API. Construct it once at
// startup, Verify it, and pass it to the components that send mail.
type EmailDispatcher struct {
	key      string
	from     string
	fromName string
}

var _ Notifier = (*EmailDispatcher)(nil)

// Mail is the process-wide dispatcher, set in main after config is loaded
var Mail Notifier

func NewEmailDispatcher(apiKey, sender, fromName string) *EmailDispatcher {
	return &EmailDispatcher{
		key:      apiKey,
		from:     sender,
		fromName: fromName,
	}
}

// Verify checks that the dispatcher is usable before the server starts
func (d *EmailDispatcher) Verify() error {
	if d.key == "" {
		return fmt.Errorf("sendgrid api key is not configured")
	}
	if d.from == "" {
		return fmt.Errorf("sender address is not configured")
	}
	return nil
}

// Close releases dispatcher resources. The Sendgrid transport is stateless,
// so this only exists to satisfy the dispatcher lifecycle.
func (d *EmailDispatcher) Close() {}

// Send delivers one email. Returns true when Sendgrid accepted the message.
func (d *EmailDispatcher) Send(htmlBody, to, subject string, attachments []Attachment) bool {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(d.fromName, d.from))

	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))
	m.AddPersonalizations(p)

	m.AddContent(sgmail.NewContent("text/html", htmlBody))

	for _, a := range attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.ContentType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}

	req := sendgrid.GetRequest(d.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Printf("[EMAIL] send to %s failed: %v", to, err)
		return false
	}
	if res.StatusCode >= http.StatusBadRequest {
		log.Printf("[EMAIL] send to %s rejected - status: %d - body: %s", to, res.StatusCode, res.Body)
		return false
	}
	return true
}

// HTML wrapper shared by all notification templates
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B2A4A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B2A4A; line-height: 1.6; }
			.content h2 { color: #1B2A4A; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #2E86AB; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #2E86AB; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LMS ACADEMY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 LMS Academy. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// WelcomeOTP greets a new user and delivers their email verification code
func (d *EmailDispatcher) WelcomeOTP(email, name, otp string) {
	subject := "Welcome to LMS Academy"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>LMS Academy</strong>! Your account has been created.</p>
		<div class="info-box">
			<strong>Verification code:</strong> %s (valid for 10 minutes)
		</div>
		<p>Enter this code to verify your email address and start learning.</p>
	`, name, otp)

	go d.Send(getEmailTemplate("Welcome Onboard!", body), email, subject, nil)
}

// CertificateIssued tells a student their certificate is ready
func (d *EmailDispatcher) CertificateIssued(email, name, courseTitle, artifactURL, verifyURL string) {
	subject := "Your Certificate: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<p>Your certificate is ready. You can download it or share the verification link below.</p>
		<a href="%s" class="btn">Download Certificate</a>
		<div class="info-box">
			<strong>Verification link:</strong> <a href="%s">%s</a>
		</div>
	`, name, courseTitle, artifactURL, verifyURL, verifyURL)

	go d.Send(getEmailTemplate("Certificate Ready", body), email, subject, nil)
}

// CertificateApproved tells a student their certificate cleared the approval chain
func (d *EmailDispatcher) CertificateApproved(email, name, courseTitle, verifyURL string) {
	subject := "Certificate Approved: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Great news! Your certificate for <strong>%s</strong> has been approved and issued.</p>
		<a href="%s" class="btn">View Certificate</a>
	`, name, courseTitle, verifyURL)

	go d.Send(getEmailTemplate("Certificate Approved", body), email, subject, nil)
}

// CertificateRejected tells a student their certificate was not approved
func (d *EmailDispatcher) CertificateRejected(email, name, courseTitle, reason string) {
	subject := "Certificate Update: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Unfortunately, your certificate request for <strong>%s</strong> was not approved.</p>
		<div style="color: #DC3545; font-weight: bold;">Reason: %s</div>
		<p>Please contact your course administrator for next steps.</p>
	`, name, courseTitle, reason)

	go d.Send(getEmailTemplate("Certificate Not Approved", body), email, subject, nil)
}

// CertificateRevoked notifies a student of a revocation
func (d *EmailDispatcher) CertificateRevoked(email, name, courseTitle, reason string) {
	subject := "Certificate Revoked: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate for <strong>%s</strong> has been revoked.</p>
		<div style="color: #DC3545; font-weight: bold;">Reason: %s</div>
	`, name, courseTitle, reason)

	go d.Send(getEmailTemplate("Certificate Revoked", body), email, subject, nil)
}

// CertificateReinstated notifies a student their certificate is valid again
func (d *EmailDispatcher) CertificateReinstated(email, name, courseTitle string) {
	subject := "Certificate Reinstated: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate for <strong>%s</strong> has been reinstated and is valid again.</p>
	`, name, courseTitle)

	go d.Send(getEmailTemplate("Certificate Reinstated", body), email, subject, nil)
}

// CertificateCopy emails the certificate document to the student on request
func (d *EmailDispatcher) CertificateCopy(email, name, courseTitle, artifactURL string, attachments []Attachment) {
	subject := "Certificate Copy: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>As requested, here is a copy of your certificate for <strong>%s</strong>.</p>
		<a href="%s" class="btn">Download Certificate</a>
	`, name, courseTitle, artifactURL)

	go d.Send(getEmailTemplate("Your Certificate", body), email, subject, attachments)
}

// PendingApprovalReminder nudges an admin about certificates awaiting approval
func (d *EmailDispatcher) PendingApprovalReminder(email, name string, pending int, digest string) {
	subject := fmt.Sprintf("%d certificate(s) awaiting approval", pending)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>There are <strong>%d</strong> certificate(s) waiting for approval.</p>
		<div class="info-box">%s</div>
		<p>Please review them from the admin dashboard.</p>
	`, name, pending, digest)

	go d.Send(getEmailTemplate("Approvals Pending", body), email, subject, nil)
}
