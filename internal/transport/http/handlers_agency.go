package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

type enrollAgencyRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type agencyResponse struct {
	Address            string `json:"address"`
	RegistrationNumber uint64 `json:"registration_number"`
	Name               string `json:"name"`
	Status             string `json:"status"`
}

func toAgencyResponse(agency *models.Agency) agencyResponse {
	return agencyResponse{
		Address:            string(agency.Address),
		RegistrationNumber: uint64(agency.RegistrationNumber),
		Name:               agency.Name,
		Status:             string(agency.Status),
	}
}

func (h *Handler) handleEnrollAgency(w http.ResponseWriter, r *http.Request) {
	var req enrollAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if err := validateEnrollAgencyRequest(req); err != nil {
		writeError(w, err)
		return
	}

	agency, err := h.registry.EnrollAgency(r.Context(), id.AgencyID(req.Address), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgencyResponse(agency))
}

func (h *Handler) handlePermitAgency(w http.ResponseWriter, r *http.Request) {
	agency, err := h.registry.PermitAgency(r.Context(), id.AgencyID(chi.URLParam(r, "address")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgencyResponse(agency))
}

func (h *Handler) handleRevokeAgency(w http.ResponseWriter, r *http.Request) {
	agency, err := h.registry.RevokeAgency(r.Context(), id.AgencyID(chi.URLParam(r, "address")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgencyResponse(agency))
}

func (h *Handler) handleGetAuthority(w http.ResponseWriter, r *http.Request) {
	_, agency, err := h.registry.Authority(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgencyResponse(agency))
}

func (h *Handler) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	agency, err := h.registry.GetAgency(r.Context(), id.AgencyID(chi.URLParam(r, "address")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgencyResponse(agency))
}

func (h *Handler) handleListAgencies(w http.ResponseWriter, r *http.Request) {
	agencies, err := h.registry.ListAgencies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]agencyResponse, 0, len(agencies))
	for _, agency := range agencies {
		out = append(out, toAgencyResponse(agency))
	}
	writeJSON(w, http.StatusOK, out)
}

func validateEnrollAgencyRequest(req enrollAgencyRequest) error {
	if !govalidator.StringLength(req.Address, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "invalid address")
	}
	if !govalidator.StringLength(req.Name, "1", "128") {
		return dErrors.New(dErrors.CodeValidation, "invalid name")
	}
	return nil
}
