package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	"github.com/fkid009/MLflow-study/internal/presentation"
)

type handlers struct {
	coord          *appreg.Coordinator
	archiveDefault bool
}

type createModelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createVersionRequest struct {
	Source      string `json:"source"`
	RunID       string `json:"run_id"`
	Description string `json:"description"`
}

type transitionRequest struct {
	Stage           string `json:"stage"`
	ArchiveExisting *bool  `json:"archive_existing"`
}

type setAliasRequest struct {
	Version int `json:"version"`
}

type registeredModelsResponse struct {
	RegisteredModels []presentation.RegisteredModelDTO `json:"registered_models"`
}

type modelVersionsResponse struct {
	ModelVersions []presentation.ModelVersionDTO `json:"model_versions"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) createRegisteredModel(w http.ResponseWriter, r *http.Request) {
	var req createModelRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondDomainError(w, r, err)
		return
	}

	m, err := h.coord.CreateRegisteredModel(r.Context(), req.Name, req.Description)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, presentation.FromRegisteredModel(m))
}

func (h *handlers) listRegisteredModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.coord.ListRegisteredModels(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, registeredModelsResponse{RegisteredModels: presentation.FromRegisteredModels(models)})
}

func (h *handlers) getRegisteredModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.coord.GetRegisteredModel(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presentation.FromRegisteredModel(m))
}

func (h *handlers) listVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.coord.SearchModelVersions(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, modelVersionsResponse{ModelVersions: presentation.FromModelVersions(versions)})
}

func (h *handlers) createVersion(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondDomainError(w, r, err)
		return
	}

	mv, err := h.coord.CreateModelVersion(r.Context(), domainreg.CreateVersionInput{
		Name:        chi.URLParam(r, "name"),
		Source:      req.Source,
		RunID:       req.RunID,
		Description: req.Description,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, presentation.FromModelVersion(mv))
}

func (h *handlers) getVersion(w http.ResponseWriter, r *http.Request) {
	version, err := versionParam(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	mv, err := h.coord.GetModelVersion(r.Context(), chi.URLParam(r, "name"), version)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presentation.FromModelVersion(mv))
}

func (h *handlers) transitionStage(w http.ResponseWriter, r *http.Request) {
	version, err := versionParam(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	var req transitionRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.Stage == "" {
		respondDomainError(w, r, &domainreg.ValidationError{Fields: map[string]string{"stage": "stage is required"}})
		return
	}
	archive := h.archiveDefault
	if req.ArchiveExisting != nil {
		archive = *req.ArchiveExisting
	}

	t, err := h.coord.TransitionStage(r.Context(), chi.URLParam(r, "name"), version, domainreg.Stage(req.Stage), archive)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presentation.FromStageTransition(t))
}

func (h *handlers) setAlias(w http.ResponseWriter, r *http.Request) {
	var req setAliasRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.Version < 1 {
		respondDomainError(w, r, &domainreg.ValidationError{Fields: map[string]string{"version": "version must be a positive integer"}})
		return
	}

	mv, err := h.coord.SetAlias(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "alias"), req.Version)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presentation.FromModelVersion(mv))
}

func (h *handlers) getAlias(w http.ResponseWriter, r *http.Request) {
	mv, err := h.coord.GetVersionByAlias(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "alias"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presentation.FromModelVersion(mv))
}

func (h *handlers) deleteAlias(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.DeleteAlias(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "alias")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolve looks up ?uri=models:/<name>/<version|stage|latest> or models:/<name>@<alias>.
func (h *handlers) resolve(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		respondDomainError(w, r, &domainreg.ValidationError{Fields: map[string]string{"uri": "uri query parameter is required"}})
		return
	}

	mv, err := h.coord.Resolve(r.Context(), uri)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presentation.FromModelVersion(mv))
}

func versionParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "version")
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &domainreg.ValidationError{Fields: map[string]string{"version": "version must be a positive integer, got " + strconv.Quote(raw)}}
	}
	return v, nil
}
