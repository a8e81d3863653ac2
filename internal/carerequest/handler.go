package carerequest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge/telehealth-platform/internal/directory"
	"github.com/carebridge/telehealth-platform/pkg/logging"
)

// Handler handles HTTP requests for care requests
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new care request handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the care request endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{requestID}", h.Get)
	r.Get("/{requestID}/providers", h.RankProviders)
	r.Post("/{requestID}/match", h.ProposeMatch)
	r.Post("/{requestID}/accept", h.transition(EventAccept))
	r.Post("/{requestID}/start", h.transition(EventStart))
	r.Post("/{requestID}/complete", h.transition(EventComplete))
	r.Post("/{requestID}/cancel", h.transition(EventCancel))
	return r
}

// Create handles POST /care-requests requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cr, err := h.service.Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, cr)
}

// Get handles GET /care-requests/{requestID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	cr, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cr)
}

// RankedProvidersResponse is the response for the ranked provider list
type RankedProvidersResponse struct {
	RequestID string                `json:"request_id"`
	Providers []*directory.Provider `json:"providers"`
	Count     int                   `json:"count"`
}

// RankProviders handles GET /care-requests/{requestID}/providers requests
func (h *Handler) RankProviders(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	ranked, err := h.service.RankProviders(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if ranked == nil {
		ranked = []*directory.Provider{}
	}
	writeJSON(w, http.StatusOK, RankedProvidersResponse{
		RequestID: id,
		Providers: ranked,
		Count:     len(ranked),
	})
}

// ProposeMatch handles POST /care-requests/{requestID}/match requests.
// The system picks the top ranked provider as the proposal.
func (h *Handler) ProposeMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	cr, err := h.service.ProposeMatch(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cr)
}

// transitionBody identifies the acting patient or provider. The portal
// is login-less, so the actor is claimed, not authenticated.
type transitionBody struct {
	ActorID string `json:"actor_id"`
}

func (h *Handler) transition(ev Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "requestID")

		var body transitionBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if body.ActorID == "" {
			http.Error(w, "actor_id is required", http.StatusBadRequest)
			return
		}

		cr, err := h.service.Transition(r.Context(), id, ev, body.ActorID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cr)
	}
}

// transitionErrorResponse is the body returned for rejected transitions.
type transitionErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
	Event  string `json:"event,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ite *InvalidTransitionError
	switch {
	case errors.As(err, &ite):
		writeJSON(w, http.StatusConflict, transitionErrorResponse{
			Error:  ite.Error(),
			Status: string(ite.Status),
			Event:  string(ite.Event),
		})
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusConflict, transitionErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotEligible):
		writeJSON(w, http.StatusUnprocessableEntity, transitionErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNoEligibleProviders):
		writeJSON(w, http.StatusUnprocessableEntity, transitionErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrRequestNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("care request operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
