package httpapi

import (
	"net/http"

	"timetrack.org/internal/audit"
	"timetrack.org/internal/track"
)

type taskRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (in taskRequest) input() track.TaskInput {
	return track.TaskInput{
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Description: in.Description,
		Status:      track.TaskStatus(in.Status),
	}
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.tasks.ListTasks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *API) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := a.tasks.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleCreateTask checks membership against the target project from the
// request body, since no path parameter names it.
func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.guard.MemberOfProject(r.Context(), req.ProjectID); err != nil {
		handleError(w, r, err)
		return
	}

	task, err := a.tasks.CreateTask(r.Context(), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "task.create", map[string]any{
		"task":    task.ID,
		"project": task.ProjectID,
	})
	w.Header().Set("Location", "/api/v1/tasks/"+task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := a.tasks.UpdateTask(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "task.update", map[string]any{
		"task": task.ID,
	})
	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.tasks.DeleteTask(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "task.delete", map[string]any{
		"task": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
