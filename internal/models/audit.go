package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionCreate       = "CREATE"
	AuditActionUpdate       = "UPDATE"
	AuditActionDelete       = "DELETE"
	AuditActionPublish      = "PUBLISH"
	AuditActionUnpublish    = "UNPUBLISH"
	AuditActionStatusChange = "STATUS_CHANGE"
	AuditActionApply        = "APPLY"
	AuditActionExport       = "EXPORT"
	AuditActionDownload     = "DOWNLOAD"
)

// SystemActorName is recorded when no authenticated principal drove the action.
const SystemActorName = "System"

// AuditActor identifies who performed an audited action. It is passed
// explicitly to the recorder rather than read from ambient request state.
// Role is carried for ownership checks; the system actor has none.
type AuditActor struct {
	ID    *string
	Name  string
	Email string
	Role  UserRole
}

// SystemActor is the fallback for unauthenticated or background actions.
func SystemActor() AuditActor {
	return AuditActor{Name: SystemActorName}
}

// AuditLog represents an immutable audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	UserName   string    `db:"user_name" json:"user_name"`
	UserEmail  string    `db:"user_email" json:"user_email,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	Details    string    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter captures filtering criteria for audit log queries. Absent
// filters are no-ops; filters combine with AND.
type AuditFilter struct {
	Resource string
	UserID   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
