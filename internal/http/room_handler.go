package httpapi

import (
	"net/http"
	"strings"

	"bhms-data/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RoomHandler 房间管理 Handler
type RoomHandler struct {
	roomService service.RoomService
	logger      *zap.Logger
}

// NewRoomHandler 创建房间管理 Handler
func NewRoomHandler(roomService service.RoomService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{roomService: roomService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *RoomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/rooms" && r.Method == http.MethodGet:
		h.ListRooms(w, r)
	case path == "/api/v1/rooms" && r.Method == http.MethodPost:
		h.CreateRoom(w, r)
	// 维修标记（必须在 GetRoom 之前，路径更具体）
	case strings.HasSuffix(path, "/maintenance"):
		roomID := strings.TrimSuffix(path, "/maintenance")
		roomID = strings.TrimPrefix(roomID, "/api/v1/rooms/")
		if roomID == "" || strings.Contains(roomID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPost:
			h.SetMaintenance(w, r, roomID)
		case http.MethodDelete:
			h.ClearMaintenance(w, r, roomID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(path, "/api/v1/rooms/"):
		roomID := strings.TrimPrefix(path, "/api/v1/rooms/")
		if roomID == "" || strings.Contains(roomID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetRoom(w, r, roomID)
		case http.MethodPut:
			h.UpdateRoom(w, r, roomID)
		case http.MethodDelete:
			h.DeleteRoom(w, r, roomID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.ListRooms(r.Context(), service.ListRoomsRequest{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Floor:  strings.TrimSpace(r.URL.Query().Get("floor")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	})
	if err != nil {
		h.logger.Error("ListRooms failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rooms))
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	room, err := h.roomService.GetRoom(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(room))
}

type createRoomBody struct {
	RoomNumber string `json:"room_number"`
	Rent       string `json:"rent"`
	Floor      string `json:"floor"`
	Status     string `json:"status"`
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	rent := decimal.Zero
	if body.Rent != "" {
		var err error
		rent, err = decimal.NewFromString(body.Rent)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid rent: "+body.Rent))
			return
		}
	}

	roomID, err := h.roomService.CreateRoom(r.Context(), service.CreateRoomRequest{
		RoomNumber: body.RoomNumber,
		Rent:       rent,
		Floor:      body.Floor,
		Status:     body.Status,
	})
	if err != nil {
		h.logger.Error("CreateRoom failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"room_id": roomID}))
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	var body createRoomBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	rent := decimal.Zero
	if body.Rent != "" {
		var err error
		rent, err = decimal.NewFromString(body.Rent)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid rent: "+body.Rent))
			return
		}
	}

	err := h.roomService.UpdateRoom(r.Context(), roomID, service.UpdateRoomRequest{
		RoomNumber: body.RoomNumber,
		Rent:       rent,
		Floor:      body.Floor,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"room_id": roomID}))
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	if err := h.roomService.DeleteRoom(r.Context(), roomID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"room_id": roomID}))
}

func (h *RoomHandler) SetMaintenance(w http.ResponseWriter, r *http.Request, roomID string) {
	if err := h.roomService.SetMaintenance(r.Context(), roomID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"room_id": roomID, "status": "Maintenance"}))
}

func (h *RoomHandler) ClearMaintenance(w http.ResponseWriter, r *http.Request, roomID string) {
	if err := h.roomService.ClearMaintenance(r.Context(), roomID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"room_id": roomID}))
}
