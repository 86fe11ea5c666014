package handlers

import (
	"net/http"

	"daynight/audit"
	"daynight/auth"
	"daynight/db"
	"daynight/middleware"

	"github.com/gorilla/mux"
)

// NewRouter wires every API route and applies the identity middleware.
// Transport middleware (CORS, rate limiting) is layered on by the caller.
func NewRouter(store db.Store, sessions *auth.SessionManager, resolver *auth.Resolver, gate *auth.Gate, auditLog *audit.Logger) http.Handler {
	authHandler := NewAuthHandler(store, sessions, auditLog)
	usersHandler := NewUsersHandler(store, gate, auditLog)
	dutyHandler := NewDutyHandler(store, auditLog)
	callsHandler := NewCallsHandler(store, gate, auditLog)
	reportsHandler := NewReportsHandler(store, gate, auditLog)
	wantedHandler := NewWantedHandler(store, gate, auditLog)
	finesHandler := NewFinesHandler(store, gate, auditLog)
	alertsHandler := NewAlertsHandler(store, gate, auditLog)
	exportHandler := NewExportHandler(store, gate, auditLog)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/seed", authHandler.Seed).Methods(http.MethodPost)

	api.HandleFunc("/users", usersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/create", usersHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/role", usersHandler.ChangeRole).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/delete", usersHandler.Delete).Methods(http.MethodPost)

	api.HandleFunc("/toggle_duty", dutyHandler.Toggle).Methods(http.MethodPost)
	api.HandleFunc("/onDutyList", dutyHandler.List).Methods(http.MethodGet)

	api.HandleFunc("/calls", callsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/calls/create", callsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/calls/{id}/assign", callsHandler.Assign).Methods(http.MethodPost)
	api.HandleFunc("/calls/{id}/delete", callsHandler.Delete).Methods(http.MethodPost)

	api.HandleFunc("/reports", reportsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/reports/create", reportsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/reports/{id}/delete", reportsHandler.Delete).Methods(http.MethodPost)

	api.HandleFunc("/wanted", wantedHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/wanted/create", wantedHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/wanted/{id}/delete", wantedHandler.Delete).Methods(http.MethodPost)

	api.HandleFunc("/fines", finesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/fines/create", finesHandler.Create).Methods(http.MethodPost)

	api.HandleFunc("/alerts", alertsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/alerts/create", alertsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id}/delete", alertsHandler.Delete).Methods(http.MethodPost)

	api.HandleFunc("/export", exportHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/import", exportHandler.Import).Methods(http.MethodPost)

	return middleware.Identity(sessions, resolver)(router)
}
