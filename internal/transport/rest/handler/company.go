package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"reportai/internal/model"
	"reportai/internal/repository"
)

// CompanyHandler handles media company configuration endpoints
type CompanyHandler struct {
	companyRepo repository.CompanyRepo
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyRepo repository.CompanyRepo) *CompanyHandler {
	return &CompanyHandler{companyRepo: companyRepo}
}

// Upsert handles PUT /v1/companies/{companyId}
func (h *CompanyHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var company model.CompanyInfo
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	company.ID = mux.Vars(r)["companyId"]
	if company.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.companyRepo.Upsert(r.Context(), &company); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// Get handles GET /v1/companies/{companyId}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	companyID := mux.Vars(r)["companyId"]

	company, err := h.companyRepo.GetByID(r.Context(), companyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company == nil {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}

	writeJSON(w, http.StatusOK, company)
}
