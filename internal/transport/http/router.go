// Package httptransport is the thin HTTP layer over the registry service. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attestry/internal/platform/middleware"
	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

// RegistryService is the surface the transport needs from the registry.
type RegistryService interface {
	EnrollAgency(ctx context.Context, address id.AgencyID, name string) (*models.Agency, error)
	PermitAgency(ctx context.Context, address id.AgencyID) (*models.Agency, error)
	RevokeAgency(ctx context.Context, address id.AgencyID) (*models.Agency, error)
	Authority(ctx context.Context) (id.AgencyID, *models.Agency, error)
	GetAgency(ctx context.Context, address id.AgencyID) (*models.Agency, error)
	ListAgencies(ctx context.Context) ([]*models.Agency, error)
	RegisterSubject(ctx context.Context, req *models.RegisterSubjectRequest) (*models.Subject, error)
	Attest(ctx context.Context, subjectID id.SubjectID, valid bool) (*models.Subject, error)
	GetSubject(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error)
	GetAttestors(ctx context.Context, subjectID id.SubjectID) ([]id.AgencyID, error)
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
}

type Handler struct {
	registry RegistryService
}

func NewHandler(registry RegistryService) *Handler {
	return &Handler{registry: registry}
}

// NewRouter wires all endpoints. Reads are open; mutations require an
// authenticated caller, whose role the service checks itself.
func NewRouter(h *Handler, validator middleware.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/authority", h.handleGetAuthority)
	r.Get("/agencies", h.handleListAgencies)
	r.Get("/agencies/{address}", h.handleGetAgency)
	r.Get("/subjects", h.handleListSubjects)
	r.Get("/subjects/{subjectID}", h.handleGetSubject)
	r.Get("/subjects/{subjectID}/attestors", h.handleGetAttestors)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Post("/agencies", h.handleEnrollAgency)
		r.Post("/agencies/{address}/permit", h.handlePermitAgency)
		r.Post("/agencies/{address}/revoke", h.handleRevokeAgency)
		r.Post("/subjects", h.handleRegisterSubject)
		r.Post("/subjects/{subjectID}/attestations", h.handleAttest)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to HTTP responses, keeping
// the JSON error envelope consistent across handlers.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	writeJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": message,
	})
}
