package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"daynight/models"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the handler tests
// and credential-less development (STORE_BACKEND=memory). Semantics mirror
// FirestoreDB: fresh ids on create, server-side timestamps, deletes are
// idempotent, and AssignCall is conditional on the call still being pending.
type MemoryStore struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	users    map[string]models.User
	roles    map[string]models.Role
	sessions map[string]string
	onDuty   map[string]models.DutyEntry
	calls    map[string]models.Call
	reports  map[string]models.Report
	wanted   map[string]models.WantedNotice
	fines    map[string]models.Fine
	alerts   map[string]models.Alert
	logs     map[string]models.LogEntry
	// extras holds imported collections the store has no typed model for.
	extras map[string][]map[string]interface{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		users:    make(map[string]models.User),
		roles:    make(map[string]models.Role),
		sessions: make(map[string]string),
		onDuty:   make(map[string]models.DutyEntry),
		calls:    make(map[string]models.Call),
		reports:  make(map[string]models.Report),
		wanted:   make(map[string]models.WantedNotice),
		fines:    make(map[string]models.Fine),
		alerts:   make(map[string]models.Alert),
		logs:     make(map[string]models.LogEntry),
		extras:   make(map[string][]map[string]interface{}),
	}
}

func (m *MemoryStore) Close() error {
	return nil
}

// timestamp returns a strictly increasing time so list ordering is stable
// even when creates land in the same wall-clock nanosecond.
func (m *MemoryStore) timestamp() time.Time {
	m.seq++
	return m.now().Add(time.Duration(m.seq))
}

func newID() string {
	return uuid.NewString()
}

// --- Users ---

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID()
	u := *user
	u.ID = id
	m.users[id] = u
	return id, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAllUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []models.User
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *MemoryStore) HasUsers(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users) > 0, nil
}

func (m *MemoryStore) SetUserRole(_ context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Role = role
	m.users[id] = user
	return nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// --- Roles ---

func (m *MemoryStore) CreateRole(_ context.Context, name string, role *models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[name] = *role
	return nil
}

func (m *MemoryStore) GetAllRoles(_ context.Context) (map[string]models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make(map[string]models.Role, len(m.roles))
	for name, role := range m.roles {
		roles[name] = role
	}
	return roles, nil
}

// --- Sessions ---

func (m *MemoryStore) CreateSession(_ context.Context, token, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = userID
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, token string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.sessions[token]
	if !ok {
		return "", ErrNotFound
	}
	return userID, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// --- Duty roster ---

func (m *MemoryStore) IsOnDuty(_ context.Context, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.onDuty[userID]
	return ok, nil
}

func (m *MemoryStore) SetDutyEntry(_ context.Context, userID, display string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDuty[userID] = models.DutyEntry{UserID: userID, Display: display, Since: m.timestamp()}
	return nil
}

func (m *MemoryStore) DeleteDutyEntry(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.onDuty, userID)
	return nil
}

func (m *MemoryStore) GetDutyRoster(_ context.Context) ([]models.DutyEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var roster []models.DutyEntry
	for _, entry := range m.onDuty {
		roster = append(roster, entry)
	}
	return roster, nil
}

// --- Calls ---

func (m *MemoryStore) CreateCall(_ context.Context, call *models.Call) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID()
	c := *call
	c.ID = id
	c.CreatedAt = m.timestamp()
	m.calls[id] = c
	return id, nil
}

func (m *MemoryStore) GetCall(_ context.Context, id string) (*models.Call, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	call, ok := m.calls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &call, nil
}

func (m *MemoryStore) GetAllCalls(_ context.Context) ([]models.Call, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var calls []models.Call
	for _, call := range m.calls {
		calls = append(calls, call)
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].CreatedAt.After(calls[j].CreatedAt) })
	return calls, nil
}

func (m *MemoryStore) AssignCall(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	call, ok := m.calls[id]
	if !ok {
		return ErrNotFound
	}
	if call.Status != models.CallPending {
		return ErrAlreadyAssigned
	}
	call.Status = models.CallAssigned
	call.AssignedTo = userID
	m.calls[id] = call
	return nil
}

func (m *MemoryStore) DeleteCall(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.calls, id)
	return nil
}

// --- Reports ---

func (m *MemoryStore) CreateReport(_ context.Context, report *models.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID()
	r := *report
	r.ID = id
	r.CreatedAt = m.timestamp()
	m.reports[id] = r
	return id, nil
}

func (m *MemoryStore) GetReport(_ context.Context, id string) (*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &report, nil
}

func (m *MemoryStore) GetAllReports(_ context.Context) ([]models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var reports []models.Report
	for _, report := range m.reports {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].CreatedAt.After(reports[j].CreatedAt) })
	return reports, nil
}

func (m *MemoryStore) DeleteReport(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reports, id)
	return nil
}

// --- Wanted notices ---

func (m *MemoryStore) CreateWanted(_ context.Context, notice *models.WantedNotice) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID()
	n := *notice
	n.ID = id
	n.CreatedAt = m.timestamp()
	m.wanted[id] = n
	return id, nil
}

func (m *MemoryStore) GetAllWanted(_ context.Context) ([]models.WantedNotice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var notices []models.WantedNotice
	for _, notice := range m.wanted {
		notices = append(notices, notice)
	}
	sort.Slice(notices, func(i, j int) bool { return notices[i].CreatedAt.After(notices[j].CreatedAt) })
	return notices, nil
}

func (m *MemoryStore) DeleteWanted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wanted, id)
	return nil
}

// --- Fines ---

func (m *MemoryStore) CreateFine(_ context.Context, fine *models.Fine) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID()
	f := *fine
	f.ID = id
	f.CreatedAt = m.timestamp()
	m.fines[id] = f
	return id, nil
}

func (m *MemoryStore) GetAllFines(_ context.Context) ([]models.Fine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var fines []models.Fine
	for _, fine := range m.fines {
		fines = append(fines, fine)
	}
	sort.Slice(fines, func(i, j int) bool { return fines[i].CreatedAt.After(fines[j].CreatedAt) })
	return fines, nil
}

// --- Alerts ---

func (m *MemoryStore) CreateAlert(_ context.Context, alert *models.Alert) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID()
	a := *alert
	a.ID = id
	a.CreatedAt = m.timestamp()
	m.alerts[id] = a
	return id, nil
}

func (m *MemoryStore) GetAllAlerts(_ context.Context) ([]models.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var alerts []models.Alert
	for _, alert := range m.alerts {
		alerts = append(alerts, alert)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.After(alerts[j].CreatedAt) })
	return alerts, nil
}

func (m *MemoryStore) DeleteAlert(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.alerts, id)
	return nil
}

// --- Audit log ---

func (m *MemoryStore) AppendLog(_ context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[newID()] = models.LogEntry{Message: message, Timestamp: m.timestamp()}
	return nil
}

// --- Export / import ---

func (m *MemoryStore) ExportCollection(_ context.Context, name string) ([]map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch name {
	case ColUsers:
		return toDocs(m.users)
	case ColRoles:
		return toDocs(m.roles)
	case ColOnDuty:
		return toDocs(m.onDuty)
	case ColCalls:
		return toDocs(m.calls)
	case ColReports:
		return toDocs(m.reports)
	case ColWanted:
		return toDocs(m.wanted)
	case ColFines:
		return toDocs(m.fines)
	case ColAlerts:
		return toDocs(m.alerts)
	case ColLogs:
		return toDocs(m.logs)
	default:
		out := []map[string]interface{}{}
		out = append(out, m.extras[name]...)
		return out, nil
	}
}

func (m *MemoryStore) ReplaceCollection(_ context.Context, name string, docs []map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case ColUsers:
		m.users = make(map[string]models.User)
		return fromDocs(docs, m.users)
	case ColRoles:
		m.roles = make(map[string]models.Role)
		return fromDocs(docs, m.roles)
	case ColOnDuty:
		m.onDuty = make(map[string]models.DutyEntry)
		return fromDocs(docs, m.onDuty)
	case ColCalls:
		m.calls = make(map[string]models.Call)
		return fromDocs(docs, m.calls)
	case ColReports:
		m.reports = make(map[string]models.Report)
		return fromDocs(docs, m.reports)
	case ColWanted:
		m.wanted = make(map[string]models.WantedNotice)
		return fromDocs(docs, m.wanted)
	case ColFines:
		m.fines = make(map[string]models.Fine)
		return fromDocs(docs, m.fines)
	case ColAlerts:
		m.alerts = make(map[string]models.Alert)
		return fromDocs(docs, m.alerts)
	case ColLogs:
		m.logs = make(map[string]models.LogEntry)
		return fromDocs(docs, m.logs)
	default:
		records := make([]map[string]interface{}, 0, len(docs))
		for _, item := range docs {
			record := make(map[string]interface{}, len(item))
			for k, v := range item {
				if k == "id" {
					continue
				}
				record[k] = v
			}
			record["id"] = newID()
			records = append(records, record)
		}
		m.extras[name] = records
		return nil
	}
}

// toDocs converts a typed collection into export maps via its JSON form.
func toDocs[T any](col map[string]T) ([]map[string]interface{}, error) {
	out := []map[string]interface{}{}
	for id, item := range col {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to export document %s: %w", id, err)
		}
		doc := map[string]interface{}{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to export document %s: %w", id, err)
		}
		doc["id"] = id
		out = append(out, doc)
	}
	return out, nil
}

// fromDocs inserts import maps into a typed collection. Each document gets a
// fresh id; the dump's id is discarded.
func fromDocs[T any](docs []map[string]interface{}, col map[string]T) error {
	for _, item := range docs {
		id := newID()
		record := make(map[string]interface{}, len(item))
		for k, v := range item {
			record[k] = v
		}
		record["id"] = id
		raw, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to import document: %w", err)
		}
		var typed T
		if err := json.Unmarshal(raw, &typed); err != nil {
			return fmt.Errorf("failed to import document: %w", err)
		}
		col[id] = typed
	}
	return nil
}
