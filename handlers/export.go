package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"daynight/apierror"
	"daynight/audit"
	"daynight/auth"
	"daynight/db"
	"daynight/middleware"
	"daynight/models"
)

// exportCollections is the full set of collections included in a dump.
// Sessions are ephemeral and excluded.
var exportCollections = []string{
	db.ColUsers,
	db.ColRoles,
	db.ColReports,
	db.ColCalls,
	db.ColWanted,
	db.ColFines,
	db.ColAlerts,
	db.ColLogs,
	db.ColOnDuty,
	db.ColMeta,
}

type ExportHandler struct {
	store db.Store
	gate  *auth.Gate
	audit *audit.Logger
}

func NewExportHandler(store db.Store, gate *auth.Gate, auditLog *audit.Logger) *ExportHandler {
	return &ExportHandler{store: store, gate: gate, audit: auditLog}
}

// Export dumps every collection with document ids attached. Requires the
// export permission.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermExport); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	data := make(map[string][]map[string]interface{}, len(exportCollections))
	for _, name := range exportCollections {
		docs, err := h.store.ExportCollection(r.Context(), name)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		data[name] = docs
	}

	h.audit.Event(r.Context(), "Data exported by %s", user.Username)
	writeOK(w, map[string]interface{}{"data": data})
}

// Import replaces each provided collection wholesale: existing documents
// are deleted, the provided records inserted with fresh ids. Requires the
// export permission. The operation is not transactional: a failing replace
// has already deleted the collection's documents and inserted a prefix of
// the new records, so any failure after import begins is reported as
// partial_import naming what finished and what failed, letting operators
// detect a half-applied restore.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermExport); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var payload map[string][]map[string]interface{}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, apierror.Missing)
		return
	}

	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	var replaced []string
	for _, name := range names {
		if err := h.store.ReplaceCollection(r.Context(), name, payload[name]); err != nil {
			log.Printf("❌ Import failed on collection %s: %v", name, err)
			done := "none"
			if len(replaced) > 0 {
				done = strings.Join(replaced, ",")
			}
			detail := fmt.Sprintf("replaced: %s; failed: %s", done, name)
			h.audit.Event(r.Context(), "Import by %s failed part-way (%s)", user.Username, detail)
			writeError(w, apierror.PartialImport(detail))
			return
		}
		replaced = append(replaced, name)
	}

	h.audit.Event(r.Context(), "Data imported by %s", user.Username)
	writeOK(w, nil)
}
