package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRequiresExportPermission(t *testing.T) {
	a := newAPI(t)
	a.seed()
	_, token := a.loginAs("smith", "J. Smith", "officer")

	rec, resp := a.do(http.MethodGet, "/api/export", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth_required", resp["error"])

	rec, resp = a.do(http.MethodGet, "/api/export", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unauthorized", resp["error"])
}

func TestExportDumpsCollectionsWithIDs(t *testing.T) {
	a := newAPI(t)
	adminTok := adminToken(a)
	createCall(a, "Bob", "noise complaint")

	rec, resp := a.do(http.MethodGet, "/api/export", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	for _, name := range []string{"users", "roles", "reports", "calls", "wanted", "fines", "alerts", "logs", "onDuty", "meta"} {
		_, present := data[name]
		assert.True(t, present, "collection %s missing from export", name)
	}

	calls, ok := data["calls"].([]interface{})
	require.True(t, ok)
	require.Len(t, calls, 1)
	doc := calls[0].(map[string]interface{})
	assert.NotEmpty(t, doc["id"])
	assert.Equal(t, "Bob", doc["caller"])

	// Sessions are deliberately absent from dumps.
	_, present := data["sessions"]
	assert.False(t, present)
}

func TestImportReplacesCollectionWithFreshIDs(t *testing.T) {
	a := newAPI(t)
	adminTok := adminToken(a)
	oldID := createCall(a, "Bob", "noise complaint")

	rec, resp := a.do(http.MethodPost, "/api/import", adminTok, map[string]interface{}{
		"calls": []map[string]interface{}{
			{"id": "imported-1", "caller": "Eve", "message": "restored call", "status": "pending", "assigned_to": ""},
			{"id": "imported-2", "caller": "Mal", "message": "second restored", "status": "pending", "assigned_to": ""},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["ok"])

	calls, err := a.store.GetAllCalls(context.Background())
	require.NoError(t, err)
	require.Len(t, calls, 2)
	callers := map[string]bool{}
	for _, c := range calls {
		callers[c.Caller] = true
		// Imported documents get new ids; the dump's ids are not reused.
		assert.NotEqual(t, oldID, c.ID)
		assert.NotContains(t, []string{"imported-1", "imported-2"}, c.ID)
	}
	assert.True(t, callers["Eve"] && callers["Mal"])
}

func TestImportRequiresExportPermission(t *testing.T) {
	a := newAPI(t)
	a.seed()
	_, token := a.loginAs("smith", "J. Smith", "officer")

	rec, resp := a.do(http.MethodPost, "/api/import", token, map[string]interface{}{
		"calls": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unauthorized", resp["error"])
}

func TestImportFailureInFirstCollectionIsStillPartial(t *testing.T) {
	a := newAPI(t)
	adminTok := adminToken(a)
	oldID := createCall(a, "Bob", "noise complaint")

	// The failing collection is itself half-replaced: the existing call is
	// gone and the good record is already in before the malformed one
	// aborts. That must read as a partial restore, not a clean failure.
	rec, resp := a.do(http.MethodPost, "/api/import", adminTok, map[string]interface{}{
		"calls": []map[string]interface{}{
			{"caller": "Eve", "message": "good record", "status": "pending"},
			{"caller": "Mal", "message": "bad record", "status": 42},
		},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "partial_import", resp["error"])
	assert.Equal(t, "replaced: none; failed: calls", resp["detail"])

	calls, err := a.store.GetAllCalls(context.Background())
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "Eve", calls[0].Caller)
	assert.NotEqual(t, oldID, calls[0].ID)
}

func TestImportMidwayFailureIsSurfacedAsPartial(t *testing.T) {
	a := newAPI(t)
	adminTok := adminToken(a)

	// Collections are replaced in name order: alerts succeeds, then calls
	// fails, leaving a half-applied restore that must be called out.
	rec, resp := a.do(http.MethodPost, "/api/import", adminTok, map[string]interface{}{
		"alerts": []map[string]interface{}{
			{"level": "red", "text": "restored alert", "created_by": "guest"},
		},
		"calls": []map[string]interface{}{
			{"caller": "Eve", "message": "bad record", "status": 42},
		},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "partial_import", resp["error"])
	assert.Equal(t, "replaced: alerts; failed: calls", resp["detail"])

	// The alerts replacement stands.
	alerts, err := a.store.GetAllAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "restored alert", alerts[0].Text)
}
