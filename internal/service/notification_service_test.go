package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/pkg/jobs"
)

type mockSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *mockSender) Send(to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func TestDisabledDispatcherSendsNothing(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, zap.NewNop(), false)

	require.NoError(t, svc.SendApplicationReceived("jane@example.com", "Jane", "Backend Engineer"))
	require.NoError(t, svc.SendStatusUpdate("jane@example.com", "Jane", "Backend Engineer", "Screening"))
	assert.Empty(t, sender.sent)
}

func TestSendApplicationReceivedSwallowsTransportError(t *testing.T) {
	sender := &mockSender{err: errors.New("smtp down")}
	svc := NewNotificationService(sender, nil, zap.NewNop(), true)

	assert.NoError(t, svc.SendApplicationReceived("jane@example.com", "Jane", "Backend Engineer"))
}

func TestSendStatusUpdateReturnsTransportError(t *testing.T) {
	sender := &mockSender{err: errors.New("smtp down")}
	svc := NewNotificationService(sender, nil, zap.NewNop(), true)

	assert.Error(t, svc.SendStatusUpdate("jane@example.com", "Jane", "Backend Engineer", "Offer"))
}

func TestStatusParagraphSelection(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, zap.NewNop(), true)

	require.NoError(t, svc.SendStatusUpdate("jane@example.com", "Jane", "Backend Engineer", "Interview"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "shortlisted for an interview")
	assert.Contains(t, sender.sent[0].body, "Backend Engineer")
	assert.Contains(t, sender.sent[0].body, "Dear Jane")
}

func TestStatusParagraphFallback(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, zap.NewNop(), true)

	require.NoError(t, svc.SendStatusUpdate("jane@example.com", "Jane", "Backend Engineer", "SomethingNew"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, genericStatusParagraph)
}

func TestEmailContentEscaped(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, zap.NewNop(), true)

	require.NoError(t, svc.SendStatusUpdate("jane@example.com", "<script>Jane</script>", "Backend <b>Engineer</b>", "Screening"))
	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].body, "<script>")
	assert.Contains(t, sender.sent[0].body, "&lt;script&gt;")
}

func TestDispatchRoutesJobTypes(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, zap.NewNop(), true)

	err := svc.Dispatch(context.Background(), jobs.Job{
		Type: JobApplicationReceived,
		Payload: MailPayload{
			To:            "jane@example.com",
			ApplicantName: "Jane",
			JobTitle:      "Backend Engineer",
		},
	})
	require.NoError(t, err)

	err = svc.Dispatch(context.Background(), jobs.Job{
		Type: JobStatusUpdate,
		Payload: MailPayload{
			To:            "jane@example.com",
			ApplicantName: "Jane",
			JobTitle:      "Backend Engineer",
			Status:        "Hired",
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1].body, "Welcome aboard")
}

func TestDispatchIgnoresMalformedPayload(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, zap.NewNop(), true)

	require.NoError(t, svc.Dispatch(context.Background(), jobs.Job{Type: JobStatusUpdate, Payload: "bogus"}))
	assert.Empty(t, sender.sent)
}
