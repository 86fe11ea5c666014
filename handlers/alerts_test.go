package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"daynight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestCreatesAlert(t *testing.T) {
	a := newAPI(t)

	rec, _ := a.do(http.MethodPost, "/api/alerts/create", "", map[string]string{
		"level": "red",
		"text":  "pursuit in progress",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	alerts, err := a.store.GetAllAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "red", alerts[0].Level)
	assert.Equal(t, "pursuit in progress", alerts[0].Text)
	assert.Equal(t, models.GuestName, alerts[0].CreatedBy)
}

func TestAlertLevelDefaultsToGreen(t *testing.T) {
	a := newAPI(t)
	a.seed()
	_, token := a.loginAs("smith", "J. Smith", "officer")

	rec, _ := a.do(http.MethodPost, "/api/alerts/create", token, map[string]string{
		"text": "shift change at 2200",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	alerts, err := a.store.GetAllAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "green", alerts[0].Level)
	assert.Equal(t, "smith", alerts[0].CreatedBy)
}

func TestCreateAlertAllowsEmptyText(t *testing.T) {
	a := newAPI(t)

	// A level-only alert is a valid status signal.
	rec, _ := a.do(http.MethodPost, "/api/alerts/create", "", map[string]string{"level": "red", "text": "   "})
	require.Equal(t, http.StatusOK, rec.Code)

	alerts, err := a.store.GetAllAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "red", alerts[0].Level)
	assert.Empty(t, alerts[0].Text)
}

func TestDeleteAlertRequiresManageAlerts(t *testing.T) {
	a := newAPI(t)
	adminTok := adminToken(a)
	_, officerToken := a.loginAs("smith", "J. Smith", "officer")

	rec, _ := a.do(http.MethodPost, "/api/alerts/create", "", map[string]string{"text": "test alert"})
	require.Equal(t, http.StatusOK, rec.Code)

	alerts, err := a.store.GetAllAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	id := alerts[0].ID

	rec, resp := a.do(http.MethodPost, "/api/alerts/"+id+"/delete", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth_required", resp["error"])

	rec, resp = a.do(http.MethodPost, "/api/alerts/"+id+"/delete", officerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unauthorized", resp["error"])

	// The admin's "all" sentinel covers manage_alerts.
	rec, _ = a.do(http.MethodPost, "/api/alerts/"+id+"/delete", adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	alerts, err = a.store.GetAllAlerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
