package db

import (
	"context"
	"fmt"
	"log"

	"daynight/models"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreDB wraps the Firestore client
type FirestoreDB struct {
	client *firestore.Client
}

var _ Store = (*FirestoreDB)(nil)

// NewFirestoreDB initializes a new Firestore client
func NewFirestoreDB(ctx context.Context, projectID, credentialsPath string) (*FirestoreDB, error) {
	opt := option.WithCredentialsFile(credentialsPath)

	config := &firebase.Config{ProjectID: projectID}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}

	log.Printf("✅ Connected to Firestore project: %s", projectID)

	return &FirestoreDB{client: client}, nil
}

// Close closes the Firestore client
func (db *FirestoreDB) Close() error {
	return db.client.Close()
}

func mapNotFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

// --- User Operations ---

// CreateUser creates a new user and returns the store-assigned id
func (db *FirestoreDB) CreateUser(ctx context.Context, user *models.User) (string, error) {
	ref, _, err := db.client.Collection(ColUsers).Add(ctx, user)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return ref.ID, nil
}

// GetUser retrieves a user by id
func (db *FirestoreDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	doc, err := db.client.Collection(ColUsers).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (db *FirestoreDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	iter := db.client.Collection(ColUsers).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

// GetAllUsers retrieves all users
func (db *FirestoreDB) GetAllUsers(ctx context.Context) ([]models.User, error) {
	iter := db.client.Collection(ColUsers).Documents(ctx)
	defer iter.Stop()

	var users []models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Warning: failed to parse user %s: %v", doc.Ref.ID, err)
			continue
		}
		user.ID = doc.Ref.ID
		users = append(users, user)
	}

	return users, nil
}

// HasUsers reports whether at least one user document exists
func (db *FirestoreDB) HasUsers(ctx context.Context) (bool, error) {
	iter := db.client.Collection(ColUsers).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check users: %w", err)
	}
	return true, nil
}

// SetUserRole updates only the role field of a user
func (db *FirestoreDB) SetUserRole(ctx context.Context, id, role string) error {
	_, err := db.client.Collection(ColUsers).Doc(id).Update(ctx, []firestore.Update{
		{Path: "role", Value: role},
	})
	if err != nil {
		return mapNotFound(err)
	}
	return nil
}

// DeleteUser deletes a user
func (db *FirestoreDB) DeleteUser(ctx context.Context, id string) error {
	_, err := db.client.Collection(ColUsers).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// --- Role Operations ---

// CreateRole creates a role document keyed by the role name
func (db *FirestoreDB) CreateRole(ctx context.Context, name string, role *models.Role) error {
	_, err := db.client.Collection(ColRoles).Doc(name).Set(ctx, role)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

// GetAllRoles retrieves the full role -> permission-set mapping
func (db *FirestoreDB) GetAllRoles(ctx context.Context) (map[string]models.Role, error) {
	iter := db.client.Collection(ColRoles).Documents(ctx)
	defer iter.Stop()

	roles := make(map[string]models.Role)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate roles: %w", err)
		}

		var role models.Role
		if err := doc.DataTo(&role); err != nil {
			log.Printf("Warning: failed to parse role %s: %v", doc.Ref.ID, err)
			continue
		}
		roles[doc.Ref.ID] = role
	}

	return roles, nil
}

// --- Session Operations ---

// CreateSession binds an opaque token to a user id
func (db *FirestoreDB) CreateSession(ctx context.Context, token, userID string) error {
	_, err := db.client.Collection(ColSessions).Doc(token).Set(ctx, &models.Session{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession returns the user id bound to the token
func (db *FirestoreDB) GetSession(ctx context.Context, token string) (string, error) {
	doc, err := db.client.Collection(ColSessions).Doc(token).Get(ctx)
	if err != nil {
		return "", mapNotFound(err)
	}

	var session models.Session
	if err := doc.DataTo(&session); err != nil {
		return "", fmt.Errorf("failed to parse session: %w", err)
	}
	return session.UserID, nil
}

// DeleteSession destroys a session binding
func (db *FirestoreDB) DeleteSession(ctx context.Context, token string) error {
	_, err := db.client.Collection(ColSessions).Doc(token).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// --- Duty Roster Operations ---

// IsOnDuty reports whether a roster entry exists for the user
func (db *FirestoreDB) IsOnDuty(ctx context.Context, userID string) (bool, error) {
	_, err := db.client.Collection(ColOnDuty).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check duty entry: %w", err)
	}
	return true, nil
}

// SetDutyEntry puts the user on duty with a server-side since timestamp
func (db *FirestoreDB) SetDutyEntry(ctx context.Context, userID, display string) error {
	_, err := db.client.Collection(ColOnDuty).Doc(userID).Set(ctx, &models.DutyEntry{Display: display})
	if err != nil {
		return fmt.Errorf("failed to set duty entry: %w", err)
	}
	return nil
}

// DeleteDutyEntry takes the user off duty
func (db *FirestoreDB) DeleteDutyEntry(ctx context.Context, userID string) error {
	_, err := db.client.Collection(ColOnDuty).Doc(userID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete duty entry: %w", err)
	}
	return nil
}

// GetDutyRoster retrieves all on-duty entries
func (db *FirestoreDB) GetDutyRoster(ctx context.Context) ([]models.DutyEntry, error) {
	iter := db.client.Collection(ColOnDuty).Documents(ctx)
	defer iter.Stop()

	var roster []models.DutyEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate duty roster: %w", err)
		}

		var entry models.DutyEntry
		if err := doc.DataTo(&entry); err != nil {
			log.Printf("Warning: failed to parse duty entry %s: %v", doc.Ref.ID, err)
			continue
		}
		entry.UserID = doc.Ref.ID
		roster = append(roster, entry)
	}

	return roster, nil
}

// --- Call Operations ---

// CreateCall creates a new call and returns the store-assigned id
func (db *FirestoreDB) CreateCall(ctx context.Context, call *models.Call) (string, error) {
	ref, _, err := db.client.Collection(ColCalls).Add(ctx, call)
	if err != nil {
		return "", fmt.Errorf("failed to create call: %w", err)
	}
	return ref.ID, nil
}

// GetCall retrieves a call by id
func (db *FirestoreDB) GetCall(ctx context.Context, id string) (*models.Call, error) {
	doc, err := db.client.Collection(ColCalls).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}

	var call models.Call
	if err := doc.DataTo(&call); err != nil {
		return nil, fmt.Errorf("failed to parse call: %w", err)
	}
	call.ID = doc.Ref.ID

	return &call, nil
}

// GetAllCalls retrieves all calls, newest first
func (db *FirestoreDB) GetAllCalls(ctx context.Context) ([]models.Call, error) {
	iter := db.client.Collection(ColCalls).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var calls []models.Call
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate calls: %w", err)
		}

		var call models.Call
		if err := doc.DataTo(&call); err != nil {
			log.Printf("Warning: failed to parse call %s: %v", doc.Ref.ID, err)
			continue
		}
		call.ID = doc.Ref.ID
		calls = append(calls, call)
	}

	return calls, nil
}

// AssignCall transitions a call pending -> assigned inside a transaction.
// The update applies only while the call is still pending, so two racing
// dispatchers cannot both win.
func (db *FirestoreDB) AssignCall(ctx context.Context, id, userID string) error {
	ref := db.client.Collection(ColCalls).Doc(id)
	err := db.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return mapNotFound(err)
		}

		var call models.Call
		if err := doc.DataTo(&call); err != nil {
			return fmt.Errorf("failed to parse call: %w", err)
		}
		if call.Status != models.CallPending {
			return ErrAlreadyAssigned
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(models.CallAssigned)},
			{Path: "assigned_to", Value: userID},
		})
	})
	return err
}

// DeleteCall deletes a call
func (db *FirestoreDB) DeleteCall(ctx context.Context, id string) error {
	_, err := db.client.Collection(ColCalls).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}
	return nil
}

// --- Report Operations ---

func (db *FirestoreDB) CreateReport(ctx context.Context, report *models.Report) (string, error) {
	ref, _, err := db.client.Collection(ColReports).Add(ctx, report)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	return ref.ID, nil
}

func (db *FirestoreDB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	doc, err := db.client.Collection(ColReports).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}

	var report models.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = doc.Ref.ID

	return &report, nil
}

func (db *FirestoreDB) GetAllReports(ctx context.Context) ([]models.Report, error) {
	iter := db.client.Collection(ColReports).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var reports []models.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reports: %w", err)
		}

		var report models.Report
		if err := doc.DataTo(&report); err != nil {
			log.Printf("Warning: failed to parse report %s: %v", doc.Ref.ID, err)
			continue
		}
		report.ID = doc.Ref.ID
		reports = append(reports, report)
	}

	return reports, nil
}

func (db *FirestoreDB) DeleteReport(ctx context.Context, id string) error {
	_, err := db.client.Collection(ColReports).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// --- Wanted Notice Operations ---

func (db *FirestoreDB) CreateWanted(ctx context.Context, notice *models.WantedNotice) (string, error) {
	ref, _, err := db.client.Collection(ColWanted).Add(ctx, notice)
	if err != nil {
		return "", fmt.Errorf("failed to create wanted notice: %w", err)
	}
	return ref.ID, nil
}

func (db *FirestoreDB) GetAllWanted(ctx context.Context) ([]models.WantedNotice, error) {
	iter := db.client.Collection(ColWanted).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var notices []models.WantedNotice
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate wanted notices: %w", err)
		}

		var notice models.WantedNotice
		if err := doc.DataTo(&notice); err != nil {
			log.Printf("Warning: failed to parse wanted notice %s: %v", doc.Ref.ID, err)
			continue
		}
		notice.ID = doc.Ref.ID
		notices = append(notices, notice)
	}

	return notices, nil
}

func (db *FirestoreDB) DeleteWanted(ctx context.Context, id string) error {
	_, err := db.client.Collection(ColWanted).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete wanted notice: %w", err)
	}
	return nil
}

// --- Fine Operations ---

func (db *FirestoreDB) CreateFine(ctx context.Context, fine *models.Fine) (string, error) {
	ref, _, err := db.client.Collection(ColFines).Add(ctx, fine)
	if err != nil {
		return "", fmt.Errorf("failed to create fine: %w", err)
	}
	return ref.ID, nil
}

func (db *FirestoreDB) GetAllFines(ctx context.Context) ([]models.Fine, error) {
	iter := db.client.Collection(ColFines).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var fines []models.Fine
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate fines: %w", err)
		}

		var fine models.Fine
		if err := doc.DataTo(&fine); err != nil {
			log.Printf("Warning: failed to parse fine %s: %v", doc.Ref.ID, err)
			continue
		}
		fine.ID = doc.Ref.ID
		fines = append(fines, fine)
	}

	return fines, nil
}

// --- Alert Operations ---

func (db *FirestoreDB) CreateAlert(ctx context.Context, alert *models.Alert) (string, error) {
	ref, _, err := db.client.Collection(ColAlerts).Add(ctx, alert)
	if err != nil {
		return "", fmt.Errorf("failed to create alert: %w", err)
	}
	return ref.ID, nil
}

func (db *FirestoreDB) GetAllAlerts(ctx context.Context) ([]models.Alert, error) {
	iter := db.client.Collection(ColAlerts).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var alerts []models.Alert
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate alerts: %w", err)
		}

		var alert models.Alert
		if err := doc.DataTo(&alert); err != nil {
			log.Printf("Warning: failed to parse alert %s: %v", doc.Ref.ID, err)
			continue
		}
		alert.ID = doc.Ref.ID
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

func (db *FirestoreDB) DeleteAlert(ctx context.Context, id string) error {
	_, err := db.client.Collection(ColAlerts).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

// --- Audit Log Operations ---

// AppendLog appends a log document with a server timestamp
func (db *FirestoreDB) AppendLog(ctx context.Context, message string) error {
	_, _, err := db.client.Collection(ColLogs).Add(ctx, &models.LogEntry{Message: message})
	if err != nil {
		return fmt.Errorf("failed to append log: %w", err)
	}
	return nil
}

// --- Export / Import Operations ---

// ExportCollection dumps every document in a collection with its id attached
func (db *FirestoreDB) ExportCollection(ctx context.Context, name string) ([]map[string]interface{}, error) {
	iter := db.client.Collection(name).Documents(ctx)
	defer iter.Stop()

	out := []map[string]interface{}{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate collection %s: %w", name, err)
		}

		data := doc.Data()
		data["id"] = doc.Ref.ID
		out = append(out, data)
	}

	return out, nil
}

// ReplaceCollection deletes every document in the collection, then inserts
// the provided records with fresh store-assigned ids. Not transactional: a
// failure mid-way leaves the collection partially replaced.
func (db *FirestoreDB) ReplaceCollection(ctx context.Context, name string, docs []map[string]interface{}) error {
	col := db.client.Collection(name)

	iter := col.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate collection %s: %w", name, err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to clear collection %s: %w", name, err)
		}
	}

	for _, item := range docs {
		record := make(map[string]interface{}, len(item))
		for k, v := range item {
			if k == "id" {
				continue
			}
			record[k] = v
		}
		if _, _, err := col.Add(ctx, record); err != nil {
			return fmt.Errorf("failed to insert into collection %s: %w", name, err)
		}
	}

	return nil
}
