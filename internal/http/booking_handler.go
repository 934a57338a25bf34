package httpapi

import (
	"net/http"
	"strings"
	"time"

	"bhms-data/internal/service"

	"go.uber.org/zap"
)

// BookingHandler 预订 Handler
type BookingHandler struct {
	bookingService service.BookingService
	logger         *zap.Logger
}

// NewBookingHandler 创建预订 Handler
func NewBookingHandler(bookingService service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *BookingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/bookings" && r.Method == http.MethodGet:
		h.ListBookings(w, r)
	case path == "/api/v1/bookings" && r.Method == http.MethodPost:
		h.CreateBooking(w, r)
	// 状态流转（必须在 GetBooking 之前，路径更具体）
	case strings.HasSuffix(path, "/status") && r.Method == http.MethodPut:
		bookingID := strings.TrimSuffix(path, "/status")
		bookingID = strings.TrimPrefix(bookingID, "/api/v1/bookings/")
		if bookingID == "" || strings.Contains(bookingID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.UpdateBookingStatus(w, r, bookingID)
	case strings.HasPrefix(path, "/api/v1/bookings/"):
		bookingID := strings.TrimPrefix(path, "/api/v1/bookings/")
		if bookingID == "" || strings.Contains(bookingID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetBooking(w, r, bookingID)
		case http.MethodDelete:
			h.DeleteBooking(w, r, bookingID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingService.ListBookings(r.Context(), service.ListBookingsRequest{
		RoomID: strings.TrimSpace(r.URL.Query().Get("room_id")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	})
	if err != nil {
		h.logger.Error("ListBookings failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(bookings))
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	booking, err := h.bookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(booking))
}

type bookingBody struct {
	RoomID      string `json:"room_id"`
	CaretakerID string `json:"caretaker_id"`
	GuestName   string `json:"guest_name"`
	GuestPhone  string `json:"guest_phone"`
	BookingDate string `json:"booking_date"` // YYYY-MM-DD，缺省为今天
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body bookingBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	var bookingDate time.Time
	if body.BookingDate != "" {
		var err error
		bookingDate, err = parseDate(body.BookingDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid booking_date: "+body.BookingDate))
			return
		}
	}

	bookingID, err := h.bookingService.CreateBooking(r.Context(), service.CreateBookingRequest{
		RoomID:      body.RoomID,
		CaretakerID: body.CaretakerID,
		GuestName:   body.GuestName,
		GuestPhone:  body.GuestPhone,
		BookingDate: bookingDate,
	})
	if err != nil {
		h.logger.Error("CreateBooking failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"booking_id": bookingID}))
}

type bookingStatusBody struct {
	Status string `json:"status"`
}

func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request, bookingID string) {
	var body bookingStatusBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.bookingService.UpdateBookingStatus(r.Context(), bookingID, body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"booking_id": bookingID, "status": body.Status}))
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	if err := h.bookingService.DeleteBooking(r.Context(), bookingID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"booking_id": bookingID}))
}
