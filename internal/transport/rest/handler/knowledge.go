package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"reportai/internal/model"
	"reportai/internal/service"
)

// KnowledgeHandler handles reference store sync and read endpoints
type KnowledgeHandler struct {
	knowledgeSvc *service.KnowledgeService
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledgeSvc *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeSvc: knowledgeSvc}
}

// UpsertPlatform handles PUT /v1/knowledge/platforms/{code}
func (h *KnowledgeHandler) UpsertPlatform(w http.ResponseWriter, r *http.Request) {
	var platform model.PlatformKnowledge
	if err := json.NewDecoder(r.Body).Decode(&platform); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	platform.Code = mux.Vars(r)["code"]

	if err := h.knowledgeSvc.UpsertPlatform(r.Context(), &platform); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, platform)
}

// GetPlatform handles GET /v1/knowledge/platforms/{code}
func (h *KnowledgeHandler) GetPlatform(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	platform, err := h.knowledgeSvc.GetPlatform(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if platform == nil {
		writeError(w, http.StatusNotFound, "platform not found")
		return
	}

	writeJSON(w, http.StatusOK, platform)
}

// UpsertIndustry handles PUT /v1/knowledge/industries/{code}
func (h *KnowledgeHandler) UpsertIndustry(w http.ResponseWriter, r *http.Request) {
	var industry model.IndustryKnowledge
	if err := json.NewDecoder(r.Body).Decode(&industry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	industry.Code = mux.Vars(r)["code"]

	if err := h.knowledgeSvc.UpsertIndustry(r.Context(), &industry); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, industry)
}

// GetIndustry handles GET /v1/knowledge/industries/{code}
func (h *KnowledgeHandler) GetIndustry(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	industry, err := h.knowledgeSvc.GetIndustry(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if industry == nil {
		writeError(w, http.StatusNotFound, "industry not found")
		return
	}

	writeJSON(w, http.StatusOK, industry)
}

type publishPromptRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// PublishPrompt handles PUT /v1/knowledge/prompts/{slug}
func (h *KnowledgeHandler) PublishPrompt(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var req publishPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.knowledgeSvc.PublishPrompt(r.Context(), slug, req.Name, req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// GetPrompt handles GET /v1/knowledge/prompts/{slug}
func (h *KnowledgeHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	doc, err := h.knowledgeSvc.GetCurrentPrompt(r.Context(), slug)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "prompt not found")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
