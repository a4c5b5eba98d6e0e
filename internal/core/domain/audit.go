package domain

import "time"

// AuditAction identifies an auth operation recorded in the audit trail.
type AuditAction string

const (
	AuditRegister     AuditAction = "register"
	AuditLoginSuccess AuditAction = "login_success"
	AuditLoginFailure AuditAction = "login_failure"
	AuditRoleCreated  AuditAction = "role_created"
	AuditRoleAssigned AuditAction = "role_assigned"
	AuditRoleRevoked  AuditAction = "role_revoked"
	AuditUserDeleted  AuditAction = "user_deleted"
)

// AuditEvent is a single entry in the auth audit trail.
type AuditEvent struct {
	Action    AuditAction
	Subject   string
	Detail    string
	Timestamp time.Time
}
