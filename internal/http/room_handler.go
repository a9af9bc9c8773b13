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

type roomService interface {
	Create(ctx context.Context, params application.CreateRoomParams) (application.Room, error)
	Update(ctx context.Context, params application.UpdateRoomParams) (application.Room, error)
	Delete(ctx context.Context, principal application.Principal, roomID string) error
	Get(ctx context.Context, roomID string) (application.Room, error)
	List(ctx context.Context) ([]application.Room, error)
}

type roomReservationLister interface {
	ListForRoom(ctx context.Context, roomID string) ([]application.Reservation, error)
}

type RoomHandler struct {
	service      roomService
	reservations roomReservationLister
	responder    responder
	logger       *slog.Logger
}

func NewRoomHandler(service roomService, reservations roomReservationLister, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, reservations: reservations, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	room, err := h.service.Create(r.Context(), application.CreateRoomParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "room_id", roomID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "room_id", roomID)

	room, err := h.service.Update(r.Context(), application.UpdateRoomParams{
		Principal: principal,
		RoomID:    roomID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "room_id", roomID)
	if err := h.service.Delete(r.Context(), principal, roomID); err != nil {
		logger.ErrorContext(r.Context(), "room delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	room, err := h.service.Get(r.Context(), roomID)
	if err != nil {
		h.log(r.Context(), "Get", "room_id", roomID).
			ErrorContext(r.Context(), "room fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	rooms, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "room list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rooms)).InfoContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: toRoomDTOs(rooms)})
}

// Reservations lists the bookings held against one room so clients can
// render its availability.
func (h *RoomHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reservations == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	logger := h.log(r.Context(), "Reservations", "room_id", roomID)
	reservations, err := h.reservations.ListForRoom(r.Context(), roomID)
	if err != nil {
		logger.ErrorContext(r.Context(), "room reservation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "room reservations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

type roomRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

func (r roomRequest) toInput() application.RoomInput {
	return application.RoomInput{
		Name:     strings.TrimSpace(r.Name),
		Location: strings.TrimSpace(r.Location),
		Capacity: r.Capacity,
	}
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type roomDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Capacity  int    `json:"capacity"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		ID:        room.ID,
		Name:      room.Name,
		Location:  room.Location,
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: room.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toRoomDTOs(rooms []application.Room) []roomDTO {
	if len(rooms) == 0 {
		return nil
	}
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return out
}
