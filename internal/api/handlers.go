// Package api is the JSON boundary between the configuration UI and the
// core. Route names match the original device firmware so existing clients
// keep working.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/campanile/bellsystem-server/internal/auth"
	"github.com/campanile/bellsystem-server/internal/eeprom"
	"github.com/campanile/bellsystem-server/internal/history"
	"github.com/campanile/bellsystem-server/internal/relay"
	"github.com/campanile/bellsystem-server/internal/schedule"
)

// Handlers serves the device API. All collaborators are injected; there is
// no package-level state.
type Handlers struct {
	log    *logrus.Logger
	auth   *auth.Manager
	engine *schedule.Engine
	store  *eeprom.Store
	bell   relay.Actuator
	events *history.Log
}

func NewHandlers(log *logrus.Logger, mgr *auth.Manager, engine *schedule.Engine, store *eeprom.Store, bell relay.Actuator, events *history.Log) *Handlers {
	return &Handlers{log: log, auth: mgr, engine: engine, store: store, bell: bell, events: events}
}

// Router builds the route table. Reads are open; every mutating route sits
// behind the session gate.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(CORS)
	r.Use(RequestLogger(h.log))

	r.HandleFunc("/completeLogin", h.Login).Methods("POST")
	r.HandleFunc("/getSchedule", h.GetSchedule).Methods("GET")
	r.HandleFunc("/getTodayRemainingRingTimes", h.RemainingRingTimes).Methods("GET")
	r.HandleFunc("/getSettings", h.GetSettings).Methods("GET")
	r.HandleFunc("/getServerMessages", h.ServerMessages).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")

	gated := r.NewRoute().Subrouter()
	gated.Use(RequireSession(h.auth))
	gated.HandleFunc("/auth", h.AuthCheck).Methods("GET")
	gated.HandleFunc("/updateSchedule", h.UpdateSchedule).Methods("POST")
	gated.HandleFunc("/saveSettings", h.SaveSettings).Methods("POST")
	gated.HandleFunc("/finalizePassword", h.ChangePassword).Methods("POST")
	gated.HandleFunc("/ToggleRelay", h.ToggleRelay).Methods("GET")

	// Catch-all 404 handler - must be last
	r.PathPrefix("/").HandlerFunc(h.NotFound)
	return r
}

// Login checks the admin password and issues the session token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		http.Error(w, "No password received", http.StatusBadRequest)
		return
	}
	if !h.auth.CheckSecret(req.Password) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := h.auth.IssueSession()
	if err != nil {
		h.log.WithError(err).Error("issue session")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// AuthCheck lets the UI probe whether its stored token is still valid.
func (h *Handlers) AuthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "Authorized")
}

// GetSchedule returns the canonical schedule in wire form.
func (h *Handlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	body, err := h.engine.CurrentSerialized()
	if err != nil {
		h.log.WithError(err).Error("serialize schedule")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// UpdateSchedule replaces the whole schedule. Validation failures are the
// client's fault; persist failures are the device's.
func (h *Handlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		http.Error(w, "No schedule data received", http.StatusBadRequest)
		return
	}
	if err := h.engine.ReplaceSchedule(body); err != nil {
		if errors.Is(err, schedule.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.WithError(err).Error("persist schedule")
		http.Error(w, "Failed to save schedule", http.StatusInternalServerError)
		return
	}
	io.WriteString(w, "Schedule saved successfully")
}

// RemainingRingTimes reports today's upcoming rings in the UI's historical
// plain-text contract: comma-joined times, or a fixed no-rings sentinel.
func (h *Handlers) RemainingRingTimes(w http.ResponseWriter, r *http.Request) {
	times, scheduled := h.engine.RemainingToday()
	if !scheduled || len(times) == 0 {
		io.WriteString(w, "No more rings today")
		return
	}
	parts := make([]string, len(times))
	for i, td := range times {
		parts[i] = td.String()
	}
	io.WriteString(w, strings.Join(parts, ","))
}

// ToggleRelay rings the bell manually for the configured duration. The
// activation holds the request for its bounded duration, same as on device.
func (h *Handlers) ToggleRelay(w http.ResponseWriter, r *http.Request) {
	d := time.Duration(h.store.LoadRingDuration()) * time.Second
	h.bell.Activate(d)
	h.recordEvent(history.KindRing, "manual ring")
	io.WriteString(w, "Relay toggle successful")
}

// GetSettings returns the persisted device configuration.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, SettingsResponse{
		DeviceName:   h.store.LoadDeviceName(),
		UniqueURL:    h.store.LoadUniqueURL(),
		RingDuration: h.store.LoadRingDuration(),
	})
}

// SaveSettings persists whichever settings the request carries.
func (h *Handlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error parsing JSON", http.StatusBadRequest)
		return
	}
	if req.DeviceName != nil {
		if err := h.store.SaveDeviceName(*req.DeviceName); err != nil {
			h.storageError(w, err)
			return
		}
	}
	if req.UniqueURL != nil {
		if err := h.store.SaveUniqueURL(*req.UniqueURL); err != nil {
			h.storageError(w, err)
			return
		}
	}
	if req.RingDuration != nil {
		d := *req.RingDuration
		if d < 1 {
			d = 1
		}
		if d > 10 {
			d = 10
		}
		if err := h.store.SaveRingDuration(d); err != nil {
			h.storageError(w, err)
			return
		}
	}
	h.recordEvent(history.KindSettings, "settings updated")
	io.WriteString(w, "Settings saved successfully")
}

// ChangePassword rotates the admin secret, gated on the old one.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		http.Error(w, "Required parameters missing", http.StatusBadRequest)
		return
	}
	if !h.auth.CheckSecret(req.OldPassword) {
		http.Error(w, "Invalid old password", http.StatusUnauthorized)
		return
	}
	if err := h.auth.UpdateSecret(req.NewPassword); err != nil {
		h.storageError(w, err)
		return
	}
	h.recordEvent(history.KindSecurity, "admin password changed")
	io.WriteString(w, "Password changed successfully")
}

// ServerMessages returns the recent event log.
func (h *Handlers) ServerMessages(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.Recent(50)
	if err != nil {
		h.log.WithError(err).Error("load events")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"bellsystem-server"}`)
}

// NotFound handles all unmatched routes (404)
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"remote": r.RemoteAddr,
	}).Warn("unmatched route")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Not Found",
		"path":   r.URL.Path,
		"method": r.Method,
	})
}

func (h *Handlers) storageError(w http.ResponseWriter, err error) {
	h.log.WithError(err).Error("storage write failed")
	http.Error(w, "Storage write failed", http.StatusInternalServerError)
}

func (h *Handlers) recordEvent(kind, message string) {
	if h.events == nil {
		return
	}
	if err := h.events.Record(kind, message); err != nil {
		h.log.WithError(err).Warn("record event")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
