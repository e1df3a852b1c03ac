package httpapi

import (
	"net/http"

	"timetrack.org/internal/audit"
	"timetrack.org/internal/track"
)

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.projects.ListProjects(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := a.projects.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	project, err := a.projects.CreateProject(r.Context(), track.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "project.create", map[string]any{
		"project": project.ID,
	})
	w.Header().Set("Location", "/api/v1/projects/"+project.ID)
	writeJSON(w, http.StatusCreated, project)
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	project, err := a.projects.UpdateProject(r.Context(), r.PathValue("id"), track.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "project.update", map[string]any{
		"project": project.ID,
	})
	writeJSON(w, http.StatusOK, project)
}

func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.projects.DeleteProject(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "project.delete", map[string]any{
		"project": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAddProjectMember(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := r.PathValue("userID")

	project, err := a.projects.AddMember(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "project.member.add", map[string]any{
		"project": projectID,
		"user":    userID,
	})
	writeJSON(w, http.StatusOK, project)
}
