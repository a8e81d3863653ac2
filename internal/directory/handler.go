package directory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge/telehealth-platform/pkg/logging"
)

// Handler handles HTTP requests for the provider/patient directory
type Handler struct {
	providers ProviderRepository
	patients  PatientRepository
	logger    *logging.Logger
}

// NewHandler creates a new directory handler
func NewHandler(providers ProviderRepository, patients PatientRepository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		providers: providers,
		patients:  patients,
		logger:    logger,
	}
}

// Routes mounts the directory endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/providers", h.CreateProvider)
	r.Get("/providers", h.ListProviders)
	r.Get("/providers/{providerID}", h.GetProvider)
	r.Put("/providers/{providerID}/availability", h.SetAvailability)
	r.Post("/patients", h.CreatePatient)
	r.Get("/patients/{patientID}", h.GetPatient)
	r.Put("/patients/{patientID}/contact", h.UpdateContact)
	return r
}

// CreateProvider handles POST /providers requests
func (h *Handler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req CreateProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.providers.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create provider", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("provider created", "id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, p)
}

// ListProviders handles GET /providers requests
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.providers.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list providers", "error", err)
		http.Error(w, "failed to list providers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": providers,
		"count":     len(providers),
	})
}

// GetProvider handles GET /providers/{providerID} requests
func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "providerID")
	p, err := h.providers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get provider", "error", err, "id", id)
		http.Error(w, "failed to get provider", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SetAvailability handles PUT /providers/{providerID}/availability requests.
// Availability is the one provider attribute mutable after onboarding.
func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "providerID")

	var body struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.providers.SetAvailability(r.Context(), id, body.Available)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update availability", "error", err, "id", id)
		http.Error(w, "failed to update availability", http.StatusInternalServerError)
		return
	}

	h.logger.Info("provider availability updated", "id", p.ID, "available", p.Available)
	writeJSON(w, http.StatusOK, p)
}

// CreatePatient handles POST /patients requests
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.patients.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create patient", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("patient created", "id", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// GetPatient handles GET /patients/{patientID} requests
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "patientID")
	p, err := h.patients.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get patient", "error", err, "id", id)
		http.Error(w, "failed to get patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateContact handles PUT /patients/{patientID}/contact requests
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "patientID")

	var req UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.patients.UpdateContact(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update contact", "error", err, "id", id)
		http.Error(w, "failed to update contact", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
