package db

import (
	"context"
	"errors"

	"daynight/models"
)

// Collection names as they appear in the document store.
const (
	ColUsers    = "users"
	ColRoles    = "roles"
	ColSessions = "sessions"
	ColOnDuty   = "onDuty"
	ColCalls    = "calls"
	ColReports  = "reports"
	ColWanted   = "wanted"
	ColFines    = "fines"
	ColAlerts   = "alerts"
	ColLogs     = "logs"
	// ColMeta holds untyped deployment metadata; only export/import touch it.
	ColMeta = "meta"
)

var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyAssigned means a call assignment lost the conditional
	// check: the call was no longer pending.
	ErrAlreadyAssigned = errors.New("call already assigned")
)

// Store is the document-store surface the handlers depend on. FirestoreDB is
// the production implementation; MemoryStore backs tests and credential-less
// development.
type Store interface {
	// --- Users ---
	CreateUser(ctx context.Context, user *models.User) (string, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	HasUsers(ctx context.Context) (bool, error)
	SetUserRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error

	// --- Roles ---
	CreateRole(ctx context.Context, name string, role *models.Role) error
	GetAllRoles(ctx context.Context) (map[string]models.Role, error)

	// --- Sessions ---
	CreateSession(ctx context.Context, token, userID string) error
	// GetSession returns the bound user id, or ErrNotFound.
	GetSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error

	// --- Duty roster ---
	IsOnDuty(ctx context.Context, userID string) (bool, error)
	SetDutyEntry(ctx context.Context, userID, display string) error
	DeleteDutyEntry(ctx context.Context, userID string) error
	GetDutyRoster(ctx context.Context) ([]models.DutyEntry, error)

	// --- Calls ---
	CreateCall(ctx context.Context, call *models.Call) (string, error)
	GetCall(ctx context.Context, id string) (*models.Call, error)
	GetAllCalls(ctx context.Context) ([]models.Call, error)
	// AssignCall sets status=assigned and assigned_to=userID, but only
	// while the call is still pending; otherwise ErrAlreadyAssigned.
	AssignCall(ctx context.Context, id, userID string) error
	DeleteCall(ctx context.Context, id string) error

	// --- Reports ---
	CreateReport(ctx context.Context, report *models.Report) (string, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	GetAllReports(ctx context.Context) ([]models.Report, error)
	DeleteReport(ctx context.Context, id string) error

	// --- Wanted notices ---
	CreateWanted(ctx context.Context, notice *models.WantedNotice) (string, error)
	GetAllWanted(ctx context.Context) ([]models.WantedNotice, error)
	DeleteWanted(ctx context.Context, id string) error

	// --- Fines ---
	CreateFine(ctx context.Context, fine *models.Fine) (string, error)
	GetAllFines(ctx context.Context) ([]models.Fine, error)

	// --- Alerts ---
	CreateAlert(ctx context.Context, alert *models.Alert) (string, error)
	GetAllAlerts(ctx context.Context) ([]models.Alert, error)
	DeleteAlert(ctx context.Context, id string) error

	// --- Audit log ---
	AppendLog(ctx context.Context, message string) error

	// --- Export / import ---
	// ExportCollection returns every document in the collection with its
	// id attached under "id".
	ExportCollection(ctx context.Context, name string) ([]map[string]interface{}, error)
	// ReplaceCollection deletes all documents in the collection and
	// inserts the given records with fresh ids (any "id" field stripped).
	ReplaceCollection(ctx context.Context, name string, docs []map[string]interface{}) error

	Close() error
}
