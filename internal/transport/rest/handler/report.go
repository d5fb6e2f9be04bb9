package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"reportai/internal/service"
)

// ReportHandler handles report lifecycle endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Create handles POST /v1/reports. Returns 202 with the pending report;
// generation continues in the background.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "companyId is required")
		return
	}

	report, err := h.reportSvc.CreateReport(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Generation outlives the request; give it its own deadline
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		h.reportSvc.Generate(ctx, report.ID, req)
	}()

	writeJSON(w, http.StatusAccepted, report)
}

// Get handles GET /v1/reports/{reportId}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["reportId"]

	report, err := h.reportSvc.GetReport(r.Context(), reportID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListByCompany handles GET /v1/companies/{companyId}/reports
func (h *ReportHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID := mux.Vars(r)["companyId"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	reports, err := h.reportSvc.ListReports(r.Context(), companyID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// AssessComplexity handles POST /v1/reports/assess. Lets the UI preview
// the routing decision without generating anything.
func (h *ReportHandler) AssessComplexity(w http.ResponseWriter, r *http.Request) {
	var req service.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, h.reportSvc.AssessComplexity(req.Tactics))
}
