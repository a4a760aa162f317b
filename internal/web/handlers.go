package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/autogarden/thermctl/internal/climate"
	"github.com/autogarden/thermctl/internal/log"
	"github.com/autogarden/thermctl/internal/storage"
)

// Version information, set via ldflags at build time
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// TargetsRequest represents a manual setpoint change.
type TargetsRequest struct {
	CoolTarget float64  `json:"cool_target"`
	HeatTarget float64  `json:"heat_target"`
	CoolSwing  *float64 `json:"cool_swing,omitempty"`
	HeatSwing  *float64 `json:"heat_swing,omitempty"`
}

// HoldRequest represents a hold mode request.
type HoldRequest struct {
	Mode string `json:"mode"` // "temporary" or "permanent"
}

// ScheduleRequest represents a full schedule replacement.
type ScheduleRequest struct {
	Entries []climate.ScheduleEntry `json:"entries"`
}

// ScheduleEnabledRequest toggles schedule-driven targets.
type ScheduleEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// VersionResponse represents version info
type VersionResponse struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
}

// handleStatus returns the current controller snapshot
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Controller().Snapshot())
}

// handleGetConfig returns the persisted climate settings
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Controller().Config())
}

// handleSetTargets applies a manual setpoint change
func (s *Server) handleSetTargets(w http.ResponseWriter, r *http.Request) {
	var req TargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctl := s.service.Controller()
	if err := ctl.SetManualTargets(req.CoolTarget, req.HeatTarget, req.CoolSwing, req.HeatSwing); err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

// handleHold enters a temporary or permanent hold
func (s *Server) handleHold(w http.ResponseWriter, r *http.Request) {
	var req HoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctl := s.service.Controller()
	var err error
	switch req.Mode {
	case "temporary":
		err = ctl.RequestTemporaryHold()
	case "permanent":
		err = ctl.RequestPermanentHold()
	default:
		writeError(w, http.StatusBadRequest, "Hold mode must be temporary or permanent")
		return
	}
	if err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

// handleResume returns the controller to automatic scheduling
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Controller().ResumeAutomatic(); err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleUpdateSchedule replaces all four schedule entries
func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Controller().UpdateSchedule(req.Entries); err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

// handleScheduleEnabled toggles schedule-driven targets
func (s *Server) handleScheduleEnabled(w http.ResponseWriter, r *http.Request) {
	var req ScheduleEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Controller().SetScheduleEnabled(req.Enabled); err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

// handleGetLogs returns event logs
func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	db := s.service.DB()

	filter := storage.EventLogFilter{
		Limit: 100,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if source := r.URL.Query().Get("source"); source != "" {
		src := storage.EventSource(source)
		filter.Source = &src
	}
	if eventType := r.URL.Query().Get("type"); eventType != "" {
		et := storage.EventType(eventType)
		filter.EventType = &et
	}

	logs, err := db.GetEventLogs(filter)
	if err != nil {
		log.Error("Failed to get logs: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get logs")
		return
	}

	writeJSON(w, logs)
}

// handleVersion returns version information
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, VersionResponse{
		Version:   Version,
		BuildDate: BuildDate,
	})
}

// writeCommandError maps a controller error onto an HTTP status: rejected
// validation is the caller's fault, anything else is ours.
func writeCommandError(w http.ResponseWriter, err error) {
	if climate.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error("Command failed: %v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
