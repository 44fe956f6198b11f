package service

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditRecord is the input to the recorder. The actor is passed explicitly
// by the caller; the recorder never reads identity from ambient state.
type AuditRecord struct {
	Actor      models.AuditActor
	Action     string
	Resource   string
	ResourceID string
	OldValues  interface{}
	NewValues  interface{}
	Details    string
	IP         string
	UserAgent  string
}

// AuditService records and queries the append-only audit trail.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
}

// NewAuditService constructs an AuditService instance.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record persists an audit entry. Failures are logged and returned; callers
// performing primary writes must not roll those writes back on audit error.
func (s *AuditService) Record(ctx context.Context, rec AuditRecord) error {
	actor := rec.Actor
	if actor.Name == "" {
		actor = models.SystemActor()
	}

	entry := &models.AuditLog{
		UserID:    actor.ID,
		UserName:  actor.Name,
		UserEmail: actor.Email,
		Action:    rec.Action,
		Resource:  rec.Resource,
		Details:   rec.Details,
		IPAddress: NormalizeIP(rec.IP),
		UserAgent: rec.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
	if rec.ResourceID != "" {
		id := rec.ResourceID
		entry.ResourceID = &id
	}

	var err error
	if entry.OldValues, err = marshalSnapshot(rec.OldValues); err != nil {
		s.logger.Warn("failed to serialise audit old values", zap.Error(err))
	}
	if entry.NewValues, err = marshalSnapshot(rec.NewValues); err != nil {
		s.logger.Warn("failed to serialise audit new values", zap.Error(err))
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to persist audit entry",
			zap.String("action", rec.Action),
			zap.String("resource", rec.Resource),
			zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist audit entry")
	}
	return nil
}

// Query returns audit entries newest first with the total count.
func (s *AuditService) Query(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query audit trail")
	}
	return entries, total, nil
}

func marshalSnapshot(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.([]byte); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

// NormalizeIP maps loopback addresses to "localhost" and strips the
// IPv4-mapped IPv6 prefix so records stay comparable across transports.
func NormalizeIP(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.TrimPrefix(addr, "::ffff:")
	if addr == "::1" || addr == "127.0.0.1" {
		return "localhost"
	}
	return addr
}

// ClientIP resolves the caller address from proxy headers, preferring
// X-Forwarded-For, then X-Real-IP, then the raw remote address.
func ClientIP(xForwardedFor, xRealIP, remoteAddr string) string {
	if xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		if first := strings.TrimSpace(parts[0]); first != "" {
			return NormalizeIP(first)
		}
	}
	if xRealIP != "" {
		return NormalizeIP(xRealIP)
	}
	return NormalizeIP(remoteAddr)
}
