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

// registerSubjectRequest carries registration input. ProfileData is
// base64-encoded by encoding/json's []byte handling.
type registerSubjectRequest struct {
	SubjectID   string `json:"subject_id"`
	ProfileData []byte `json:"profile_data"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
}

type attestRequest struct {
	Valid *bool `json:"valid"`
}

type subjectResponse struct {
	SubjectID         string `json:"subject_id"`
	ProfileHash       string `json:"profile_hash"`
	Name              string `json:"name"`
	Gender            string `json:"gender"`
	DateOfBirth       string `json:"date_of_birth"`
	VerificationScore int    `json:"verification_score"`
	Status            string `json:"status"`
}

func toSubjectResponse(subject *models.Subject) subjectResponse {
	return subjectResponse{
		SubjectID:         string(subject.ID),
		ProfileHash:       subject.ProfileHash.String(),
		Name:              subject.Name,
		Gender:            string(subject.Gender),
		DateOfBirth:       subject.DateOfBirth,
		VerificationScore: subject.VerificationScore,
		Status:            string(subject.Status),
	}
}

func (h *Handler) handleRegisterSubject(w http.ResponseWriter, r *http.Request) {
	var req registerSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if err := validateRegisterSubjectRequest(req); err != nil {
		writeError(w, err)
		return
	}

	subject, err := h.registry.RegisterSubject(r.Context(), &models.RegisterSubjectRequest{
		SubjectID:   id.SubjectID(req.SubjectID),
		ProfileData: req.ProfileData,
		Name:        req.Name,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubjectResponse(subject))
}

func (h *Handler) handleAttest(w http.ResponseWriter, r *http.Request) {
	var req attestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if req.Valid == nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "valid is required"))
		return
	}

	subject, err := h.registry.Attest(r.Context(), id.SubjectID(chi.URLParam(r, "subjectID")), *req.Valid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjectResponse(subject))
}

func (h *Handler) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := h.registry.GetSubject(r.Context(), id.SubjectID(chi.URLParam(r, "subjectID")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjectResponse(subject))
}

func (h *Handler) handleGetAttestors(w http.ResponseWriter, r *http.Request) {
	attestors, err := h.registry.GetAttestors(r.Context(), id.SubjectID(chi.URLParam(r, "subjectID")))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]string, 0, len(attestors))
	for _, a := range attestors {
		out = append(out, string(a))
	}
	writeJSON(w, http.StatusOK, map[string][]string{"attestors": out})
}

func (h *Handler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.registry.ListSubjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]subjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, toSubjectResponse(subject))
	}
	writeJSON(w, http.StatusOK, out)
}

func validateRegisterSubjectRequest(req registerSubjectRequest) error {
	if !govalidator.StringLength(req.SubjectID, "1", "64") {
		return dErrors.New(dErrors.CodeValidation, "invalid subject_id")
	}
	if len(req.ProfileData) == 0 {
		return dErrors.New(dErrors.CodeValidation, "profile_data is required")
	}
	if !govalidator.StringLength(req.Name, "1", "128") {
		return dErrors.New(dErrors.CodeValidation, "invalid name")
	}
	if !govalidator.StringLength(req.DateOfBirth, "1", "32") {
		return dErrors.New(dErrors.CodeValidation, "invalid date_of_birth")
	}
	if !govalidator.IsIn(req.Gender, "male", "female", "other") {
		return dErrors.New(dErrors.CodeValidation, "invalid gender")
	}
	return nil
}
