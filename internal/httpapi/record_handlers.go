package httpapi

import (
	"net/http"
	"time"

	"timetrack.org/internal/audit"
	"timetrack.org/internal/track"
)

type recordRequest struct {
	UserID      string    `json:"user_id"`
	TaskID      string    `json:"task_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
}

func (in recordRequest) input() track.RecordInput {
	return track.RecordInput{
		UserID:      in.UserID,
		TaskID:      in.TaskID,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
	}
}

func (a *API) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := a.records.ListRecords(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := a.records.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleCreateRecord checks membership against the target task's project
// from the request body.
func (a *API) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.guard.MemberOfTaskProject(r.Context(), req.TaskID); err != nil {
		handleError(w, r, err)
		return
	}

	record, err := a.records.CreateRecord(r.Context(), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "record.create", map[string]any{
		"record": record.ID,
		"task":   record.TaskID,
	})
	w.Header().Set("Location", "/api/v1/records/"+record.ID)
	writeJSON(w, http.StatusCreated, record)
}

func (a *API) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	record, err := a.records.UpdateRecord(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "record.update", map[string]any{
		"record": record.ID,
	})
	writeJSON(w, http.StatusOK, record)
}

func (a *API) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.records.DeleteRecord(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "record.delete", map[string]any{
		"record": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
