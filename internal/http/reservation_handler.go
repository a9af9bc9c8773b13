package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/application"
)

type reservationService interface {
	Reserve(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	Update(ctx context.Context, params application.UpdateReservationParams) (application.Reservation, error)
	Cancel(ctx context.Context, principal application.Principal, reservationID string) error
	Get(ctx context.Context, principal application.Principal, reservationID string) (application.Reservation, error)
	List(ctx context.Context, principal application.Principal) ([]application.Reservation, error)
}

type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

// Create books a room for the authenticated principal. Administrators may
// set on_behalf_of_user_id to book for someone else.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	req, err := decodeReservationRequest(r)
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", req.RoomID)

	reservation, err := h.service.Reserve(r.Context(), application.CreateReservationParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing reservation id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	req, err := decodeReservationRequest(r)
	if err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "reservation_id", reservationID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "reservation_id", reservationID)

	reservation, err := h.service.Update(r.Context(), application.UpdateReservationParams{
		Principal:     principal,
		ReservationID: reservationID,
		Input:         req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing reservation id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "reservation_id", reservationID)
	if err := h.service.Cancel(r.Context(), principal, reservationID); err != nil {
		logger.ErrorContext(r.Context(), "reservation cancel failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	reservation, err := h.service.Get(r.Context(), principal, reservationID)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "reservation_id", reservationID).
			ErrorContext(r.Context(), "reservation fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	reservations, err := h.service.List(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "reservations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

type reservationRequest struct {
	RoomID           string `json:"room_id"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Purpose          string `json:"purpose"`
	Attendees        int    `json:"attendees"`
	OnBehalfOfUserID string `json:"on_behalf_of_user_id"`

	start time.Time
	end   time.Time
}

func decodeReservationRequest(r *http.Request) (reservationRequest, error) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return reservationRequest{}, err
	}
	// Unparseable timestamps are left zero so validation reports them
	// field by field instead of failing the whole body.
	if trimmed := strings.TrimSpace(req.Start); trimmed != "" {
		if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
			req.start = parsed
		}
	}
	if trimmed := strings.TrimSpace(req.End); trimmed != "" {
		if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
			req.end = parsed
		}
	}
	return req, nil
}

func (r reservationRequest) toInput() application.ReservationInput {
	return application.ReservationInput{
		RoomID:           strings.TrimSpace(r.RoomID),
		Start:            r.start,
		End:              r.end,
		Purpose:          r.Purpose,
		Attendees:        r.Attendees,
		OnBehalfOfUserID: strings.TrimSpace(r.OnBehalfOfUserID),
	}
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	RoomID    string `json:"room_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Purpose   string `json:"purpose,omitempty"`
	Attendees int    `json:"attendees"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	return reservationDTO{
		ID:        reservation.ID,
		UserID:    reservation.UserID,
		RoomID:    reservation.RoomID,
		Start:     reservation.Slot.Start.UTC().Format(time.RFC3339Nano),
		End:       reservation.Slot.End.UTC().Format(time.RFC3339Nano),
		Purpose:   reservation.Purpose,
		Attendees: reservation.Attendees,
		CreatedAt: reservation.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: reservation.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationDTO(reservation))
	}
	return out
}
