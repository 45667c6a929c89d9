// Package api exposes HTTP handlers for the signup service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"example.com/signup/internal/domain"
	"example.com/signup/internal/observability"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/activities", h.listActivities)
	mux.HandleFunc("/activities/", h.rosterAction)
	mux.HandleFunc("/", root)
	mux.HandleFunc("/healthz", healthz)
}

// root redirects the index to the static UI.
func root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make(map[string]ActivityView, len(activities))
	for _, activity := range activities {
		out[activity.Name] = toActivityView(activity)
	}
	writeJSON(w, http.StatusOK, out)
}

// rosterAction dispatches /activities/{name}/signup and /activities/{name}/unregister.
// The activity name arrives URL-path-encoded; ServeMux hands it to us decoded.
func (h *Handler) rosterAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/activities/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	activityName, action := parts[0], parts[1]

	email := r.URL.Query().Get("email")
	if strings.TrimSpace(email) == "" {
		writeDetail(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	switch {
	case action == "signup" && r.Method == http.MethodPost:
		h.signup(w, r, activityName, email)
	case action == "unregister" && r.Method == http.MethodDelete:
		h.unregister(w, r, activityName, email)
	case action == "signup" || action == "unregister":
		writeDetail(w, http.StatusMethodNotAllowed, "unsupported method")
	default:
		writeDetail(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request, activityName, email string) {
	message, err := h.service.SignUp(r.Context(), activityName, email)
	if err != nil {
		observability.RecordSignup(outcomeFor(err))
		writeRosterError(w, err)
		return
	}

	observability.RecordSignup(observability.OutcomeOK)
	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request, activityName, email string) {
	message, err := h.service.Unregister(r.Context(), activityName, email)
	if err != nil {
		observability.RecordUnregister(outcomeFor(err))
		writeRosterError(w, err)
		return
	}

	observability.RecordUnregister(observability.OutcomeOK)
	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func writeRosterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeDetail(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		writeDetail(w, http.StatusBadRequest, "Student already signed up for this activity")
	case errors.Is(err, domain.ErrNotRegistered):
		writeDetail(w, http.StatusBadRequest, "Student not registered for this activity")
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, domain.ErrActivityNotFound):
		return observability.OutcomeNotFound
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return observability.OutcomeAlreadyRegistered
	case errors.Is(err, domain.ErrNotRegistered):
		return observability.OutcomeNotRegistered
	default:
		return observability.OutcomeError
	}
}

// ActivityView is the wire representation of an activity record.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// MessageResponse carries the confirmation message for roster mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

func toActivityView(activity domain.Activity) ActivityView {
	participants := activity.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     activity.Description,
		Schedule:        activity.Schedule,
		MaxParticipants: activity.MaxParticipants,
		Participants:    participants,
	}
}

// writeDetail emits the contract's error body: a bare detail field.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
