// models.go
// Defines the core data structures shared by the dispatch console backend.

package models

import (
	"time"
)

// Permission is a named capability string granted through a role.
// The sentinel PermAll grants everything unconditionally.
type Permission string

const (
	PermAll           Permission = "all"
	PermCreateCall    Permission = "create_call"
	PermAssignCall    Permission = "assign_call"
	PermCreateReports Permission = "create_reports"
	PermDeleteReports Permission = "delete_reports"
	PermCreateBolo    Permission = "create_bolo"
	PermManageWanted  Permission = "manage_wanted"
	PermCreateFine    Permission = "create_fine"
	PermManageAlerts  Permission = "manage_alerts"
	PermManageUsers   Permission = "manage_users"
	PermExport        Permission = "export"
)

// Role names with special meaning in ownership checks.
const (
	RoleAdmin    = "admin"
	RoleSergeant = "sergeant"
)

// SeedAdminUsername is the bootstrap admin created by the seed operation.
// This account can never be deleted through the user deletion endpoint.
const SeedAdminUsername = "perety"

// CallStatus is the lifecycle state of a dispatch call. The only transition
// is pending -> assigned.
type CallStatus string

const (
	CallPending  CallStatus = "pending"
	CallAssigned CallStatus = "assigned"
)

// User is a console account. Passwords are stored and compared in plaintext;
// this is a known limitation of the system, preserved on purpose.
type User struct {
	ID       string `firestore:"-" json:"id"`
	Username string `firestore:"username" json:"username"`
	Display  string `firestore:"display" json:"display"`
	Password string `firestore:"password" json:"password"`
	Role     string `firestore:"role" json:"role"` // empty = unassigned, no permissions
	Badge    string `firestore:"badge" json:"badge"`
}

// Role maps a role name (the document id) to its permission set.
type Role struct {
	Name        string       `firestore:"name" json:"name"`
	Permissions []Permission `firestore:"permissions" json:"permissions"`
}

// HasPermission reports whether the role grants perm, either exactly or
// through the sentinel PermAll.
func (r *Role) HasPermission(perm Permission) bool {
	for _, p := range r.Permissions {
		if p == PermAll || p == perm {
			return true
		}
	}
	return false
}

// DutyEntry marks a user as on duty. The document id is the user id;
// presence means on duty, absence means off duty.
type DutyEntry struct {
	UserID  string    `firestore:"-" json:"id"`
	Display string    `firestore:"display" json:"display"`
	Since   time.Time `firestore:"since,serverTimestamp" json:"since"`
}

// Call is a dispatch call. AssignedTo is empty until a dispatcher
// self-assigns, which also flips Status to CallAssigned.
type Call struct {
	ID         string     `firestore:"-" json:"id"`
	Caller     string     `firestore:"caller" json:"caller"`
	Message    string     `firestore:"message" json:"message"`
	Status     CallStatus `firestore:"status" json:"status"`
	AssignedTo string     `firestore:"assigned_to" json:"assigned_to"`
	CreatedAt  time.Time  `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// Report is a filed incident report. Author is the writer's display name,
// not their id; ownership checks compare display names, so a rename breaks
// ownership of older reports. Preserved as-is.
type Report struct {
	ID          string    `firestore:"-" json:"id"`
	Title       string    `firestore:"title" json:"title"`
	Description string    `firestore:"description" json:"description"`
	Author      string    `firestore:"author" json:"author"`
	CreatedAt   time.Time `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// WantedNotice is a public BOLO record with a bounty.
type WantedNotice struct {
	ID          string    `firestore:"-" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Bounty      int       `firestore:"bounty" json:"bounty"`
	CreatedAt   time.Time `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// Fine is an issued penalty.
type Fine struct {
	ID        string    `firestore:"-" json:"id"`
	Offender  string    `firestore:"offender" json:"offender"`
	Amount    int       `firestore:"amount" json:"amount"`
	Reason    string    `firestore:"reason" json:"reason"`
	Author    string    `firestore:"author" json:"author"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// Alert covers both user-posted alerts (Level/Text/CreatedBy) and the system
// alerts emitted on call creation and assignment (Type/CallID/User).
type Alert struct {
	ID        string    `firestore:"-" json:"id"`
	Type      string    `firestore:"type,omitempty" json:"type,omitempty"`
	CallID    string    `firestore:"call_id,omitempty" json:"call_id,omitempty"`
	User      string    `firestore:"user,omitempty" json:"user,omitempty"`
	Level     string    `firestore:"level" json:"level"`
	Text      string    `firestore:"text,omitempty" json:"text,omitempty"`
	CreatedBy string    `firestore:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// System alert types emitted as side effects of call mutations.
const (
	AlertTypeCall   = "call"
	AlertTypeAssign = "assign"
)

// GuestName is recorded as the creator of alerts posted without a session.
const GuestName = "guest"

// LogEntry is a write-only audit record. The application never reads these
// back; they exist for operators.
type LogEntry struct {
	Message   string    `firestore:"msg" json:"msg"`
	Timestamp time.Time `firestore:"t,serverTimestamp" json:"t"`
}

// Session binds an opaque token (the document id) to a user id for the
// lifetime of the browser session cookie. No expiry policy exists.
type Session struct {
	Token     string    `firestore:"-" json:"token"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp" json:"created_at"`
}
