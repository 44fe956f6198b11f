package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/pkg/jobs"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/mailer"
)

// Notification job types consumed by the mail queue.
const (
	JobApplicationReceived = "application_received"
	JobStatusUpdate        = "status_update"
)

// MailPayload carries everything a queued notification needs to render.
type MailPayload struct {
	To            string
	ApplicantName string
	JobTitle      string
	Status        string
}

// statusParagraphs hold the status-specific body line, keyed by upper-cased
// status. Unknown statuses fall back to a generic line.
var statusParagraphs = map[string]string{
	"APPLIED":   "Your application has been received and is awaiting review.",
	"SCREENING": "Your application is being reviewed by our recruitment team.",
	"INTERVIEW": "Congratulations! You have been shortlisted for an interview. Our team will contact you with the details.",
	"OFFER":     "Great news! We would like to extend an offer to you. Expect a call from our team shortly.",
	"HIRED":     "Welcome aboard! Your hiring process is complete.",
	"REJECTED":  "After careful consideration we have decided not to move forward with your application at this time.",
	"WITHDRAWN": "Your application has been withdrawn as requested.",
}

const genericStatusParagraph = "Your application status has been updated."

// NotificationService renders and sends applicant-facing emails. When
// disabled it performs no transport calls at all.
type NotificationService struct {
	sender  mailer.Sender
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool
}

// NewNotificationService constructs the dispatcher.
func NewNotificationService(sender mailer.Sender, metrics *MetricsService, logger *zap.Logger, enabled bool) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{sender: sender, metrics: metrics, logger: logger, enabled: enabled}
}

// Enabled reports whether outbound email is active.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.enabled && s.sender != nil
}

// SendApplicationReceived confirms receipt of a new application. Transport
// failures are logged and swallowed; a lost confirmation never surfaces to
// the applicant flow.
func (s *NotificationService) SendApplicationReceived(to, applicantName, jobTitle string) error {
	if !s.Enabled() {
		s.logger.Debug("email disabled, skipping application confirmation", zap.String("to", to))
		return nil
	}
	subject := fmt.Sprintf("Application received: %s", jobTitle)
	body := renderEmail(applicantName, fmt.Sprintf(
		"Thank you for applying for the <strong>%s</strong> position. %s",
		html.EscapeString(jobTitle), statusParagraphs["APPLIED"]))
	if err := s.sender.Send(to, subject, body); err != nil {
		s.metrics.RecordEmail(false)
		s.logger.Warn("failed to send application confirmation", zap.String("to", to), zap.Error(err))
		return nil
	}
	s.metrics.RecordEmail(true)
	return nil
}

// SendStatusUpdate notifies the applicant of a funnel move. Unlike the
// confirmation mail, transport errors are returned so queue retries apply.
func (s *NotificationService) SendStatusUpdate(to, applicantName, jobTitle, status string) error {
	if !s.Enabled() {
		s.logger.Debug("email disabled, skipping status update", zap.String("to", to))
		return nil
	}
	paragraph, ok := statusParagraphs[strings.ToUpper(status)]
	if !ok {
		paragraph = genericStatusParagraph
	}
	subject := fmt.Sprintf("Application update: %s", jobTitle)
	body := renderEmail(applicantName, fmt.Sprintf(
		"Your application for the <strong>%s</strong> position has moved to <strong>%s</strong>.<br/><br/>%s",
		html.EscapeString(jobTitle), html.EscapeString(status), paragraph))
	if err := s.sender.Send(to, subject, body); err != nil {
		s.metrics.RecordEmail(false)
		s.logger.Error("failed to send status update", zap.String("to", to), zap.String("status", status), zap.Error(err))
		return err
	}
	s.metrics.RecordEmail(true)
	return nil
}

// Dispatch is the queue handler wired into pkg/jobs.
func (s *NotificationService) Dispatch(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(MailPayload)
	if !ok {
		s.logger.Error("unexpected mail payload type", zap.String("job_type", job.Type))
		return nil
	}
	switch job.Type {
	case JobApplicationReceived:
		return s.SendApplicationReceived(payload.To, payload.ApplicantName, payload.JobTitle)
	case JobStatusUpdate:
		return s.SendStatusUpdate(payload.To, payload.ApplicantName, payload.JobTitle, payload.Status)
	default:
		s.logger.Warn("unknown mail job type", zap.String("job_type", job.Type))
		return nil
	}
}

func renderEmail(recipientName, paragraphHTML string) string {
	name := html.EscapeString(recipientName)
	if name == "" {
		name = "Applicant"
	}
	return fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<p>Dear %s,</p>
<p>%s</p>
<p>Kind regards,<br/>The Recruitment Team</p>
</body></html>`, name, paragraphHTML)
}
