package userauth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleClient is the default role assigned on self registration
	RoleClient UserRole = "client"
	// RoleOperator handles back-office workflows
	RoleOperator UserRole = "operator"
	// RoleAdmin administers the platform
	RoleAdmin UserRole = "admin"
)

// UserStatus tracks account lifecycle
type UserStatus = string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status        UserStatus `bun:"status,notnull" json:"status,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	MiddleName    string     `bun:"middle_name" json:"middle_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone,notnull,unique" json:"phone,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// UserSession is a persisted refresh token record. The refresh token is
// an opaque random string; it is never derived from the access token.
// Lookups are by token or by owning user, one active session per user.
type UserSession struct {
	bun.BaseModel `bun:"table:user_sessions,alias:uss"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	RefreshToken  string     `bun:"refresh_token,notnull,unique" json:"-"`
	IPAddress     string     `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent     string     `bun:"user_agent" json:"user_agent,omitempty"`
	Revoked       bool       `bun:"revoked,notnull" json:"revoked"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Expired reports whether the session's refresh token is past its TTL.
// Expiry is detected lazily on use, not by a timer.
func (s *UserSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Usable reports whether the session can still redeem a refresh.
func (s *UserSession) Usable(now time.Time) bool {
	return !s.Revoked && !s.Expired(now)
}

// AuditActionType is a catalog row naming an auditable action.
type AuditActionType struct {
	bun.BaseModel `bun:"table:audit_action_types,alias:aat"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string    `bun:"name,notnull,unique" json:"name,omitempty"`
}

// AuditLog is a persisted audit record.
type AuditLog struct {
	bun.BaseModel   `bun:"table:audit_logs,alias:adl"`
	ID              uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID          *uuid.UUID     `bun:"user_id,type:uuid" json:"user_id,omitempty"`
	ActionTypeID    uuid.UUID      `bun:"action_type_id,notnull,type:uuid" json:"action_type_id,omitempty"`
	ActorIdentifier string         `bun:"actor_identifier" json:"actor_identifier,omitempty"`
	IPAddress       string         `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent       string         `bun:"user_agent" json:"user_agent,omitempty"`
	Payload         map[string]any `bun:"payload,type:jsonb" json:"payload,omitempty"`
	TableName       string         `bun:"table_name" json:"table_name,omitempty"`
	RecordID        string         `bun:"record_id" json:"record_id,omitempty"`
	PerformedAt     time.Time      `bun:"performed_at,notnull" json:"performed_at,omitempty"`
}
