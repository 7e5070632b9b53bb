package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"civic-registry/internal/service"
)

// TemplateHandler serves /api/templates.
type TemplateHandler struct {
	templateService service.TemplateService
	maxBody         int64
	logger          *zap.Logger
}

func NewTemplateHandler(templateService service.TemplateService, maxBody int64, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, maxBody: maxBody, logger: logger}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.templateService.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData("", list, len(list)))
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "Invalid template ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := h.templateService.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData("", t, -1))
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req service.TemplateRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := h.templateService.CreateTemplate(r.Context(), caller, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkData("Template created successfully", t, -1))
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid template ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req service.TemplateRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := h.templateService.UpdateTemplate(r.Context(), caller, id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData("Template updated successfully", t, -1))
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid template ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.templateService.DeleteTemplate(r.Context(), caller, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok("Template deleted successfully"))
}

type previewRequest struct {
	Variables map[string]string `json:"variables"`
}

func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "Invalid template ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req previewRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	p, err := h.templateService.PreviewTemplate(r.Context(), id, req.Variables)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData("", p, -1))
}
