package httpapi

import (
	"net/http"
	"strings"
	"time"

	"bhms-data/internal/service"

	"go.uber.org/zap"
)

// BoarderHandler 住宿人生命周期 Handler（含监护人子资源）
type BoarderHandler struct {
	boarderService service.BoarderService
	logger         *zap.Logger
}

// NewBoarderHandler 创建住宿人 Handler
func NewBoarderHandler(boarderService service.BoarderService, logger *zap.Logger) *BoarderHandler {
	return &BoarderHandler{boarderService: boarderService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *BoarderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/boarders" && r.Method == http.MethodGet:
		h.ListBoarders(w, r)
	case path == "/api/v1/boarders" && r.Method == http.MethodPost:
		h.CreateBoarder(w, r)
	// 换房/搬出（必须在 GetBoarder 之前，路径更具体）
	case strings.HasSuffix(path, "/room") && r.Method == http.MethodPut:
		boarderID := strings.TrimSuffix(path, "/room")
		boarderID = strings.TrimPrefix(boarderID, "/api/v1/boarders/")
		if boarderID == "" || strings.Contains(boarderID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.AssignRoom(w, r, boarderID)
	// 监护人子资源
	case strings.HasSuffix(path, "/guardians"):
		boarderID := strings.TrimSuffix(path, "/guardians")
		boarderID = strings.TrimPrefix(boarderID, "/api/v1/boarders/")
		if boarderID == "" || strings.Contains(boarderID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.ListGuardians(w, r, boarderID)
		case http.MethodPost:
			h.AddGuardian(w, r, boarderID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	// 独立监护人操作
	case strings.HasPrefix(path, "/api/v1/guardians/"):
		guardianID := strings.TrimPrefix(path, "/api/v1/guardians/")
		if guardianID == "" || strings.Contains(guardianID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPut:
			h.UpdateGuardian(w, r, guardianID)
		case http.MethodDelete:
			h.RemoveGuardian(w, r, guardianID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(path, "/api/v1/boarders/"):
		boarderID := strings.TrimPrefix(path, "/api/v1/boarders/")
		if boarderID == "" || strings.Contains(boarderID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetBoarder(w, r, boarderID)
		case http.MethodPut:
			h.UpdateBoarder(w, r, boarderID)
		case http.MethodDelete:
			h.DeleteBoarder(w, r, boarderID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BoarderHandler) ListBoarders(w http.ResponseWriter, r *http.Request) {
	resp, err := h.boarderService.ListBoarders(r.Context(), service.ListBoardersRequest{
		RoomID:      strings.TrimSpace(r.URL.Query().Get("room_id")),
		CaretakerID: strings.TrimSpace(r.URL.Query().Get("caretaker_id")),
		Search:      strings.TrimSpace(r.URL.Query().Get("search")),
		Page:        parseInt(r.URL.Query().Get("page"), 1),
		Size:        parseInt(r.URL.Query().Get("size"), 20),
	})
	if err != nil {
		h.logger.Error("ListBoarders failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *BoarderHandler) GetBoarder(w http.ResponseWriter, r *http.Request, boarderID string) {
	detail, err := h.boarderService.GetBoarder(r.Context(), boarderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(detail))
}

type boarderBody struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	RoomID      string `json:"room_id"`
	CaretakerID string `json:"caretaker_id"`
	MoveInDate  string `json:"move_in_date"` // YYYY-MM-DD
}

func (b *boarderBody) moveInDate() (*time.Time, error) {
	if b.MoveInDate == "" {
		return nil, nil
	}
	t, err := parseDate(b.MoveInDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *BoarderHandler) CreateBoarder(w http.ResponseWriter, r *http.Request) {
	var body boarderBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	moveIn, err := body.moveInDate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid move_in_date: "+body.MoveInDate))
		return
	}

	boarderID, err := h.boarderService.CreateBoarder(r.Context(), service.CreateBoarderRequest{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Phone:       body.Phone,
		Email:       body.Email,
		RoomID:      body.RoomID,
		CaretakerID: body.CaretakerID,
		MoveInDate:  moveIn,
	})
	if err != nil {
		h.logger.Error("CreateBoarder failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"boarder_id": boarderID}))
}

func (h *BoarderHandler) UpdateBoarder(w http.ResponseWriter, r *http.Request, boarderID string) {
	var body boarderBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	moveIn, err := body.moveInDate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid move_in_date: "+body.MoveInDate))
		return
	}

	err = h.boarderService.UpdateBoarder(r.Context(), boarderID, service.UpdateBoarderRequest{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Phone:       body.Phone,
		Email:       body.Email,
		CaretakerID: body.CaretakerID,
		MoveInDate:  moveIn,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"boarder_id": boarderID}))
}

type assignRoomBody struct {
	// null 或缺省表示搬出
	RoomID *string `json:"room_id"`
}

func (h *BoarderHandler) AssignRoom(w http.ResponseWriter, r *http.Request, boarderID string) {
	var body assignRoomBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.boarderService.AssignRoom(r.Context(), boarderID, body.RoomID); err != nil {
		h.logger.Error("AssignRoom failed",
			zap.String("boarder_id", boarderID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"boarder_id": boarderID}))
}

func (h *BoarderHandler) DeleteBoarder(w http.ResponseWriter, r *http.Request, boarderID string) {
	if err := h.boarderService.DeleteBoarder(r.Context(), boarderID); err != nil {
		h.logger.Error("DeleteBoarder failed",
			zap.String("boarder_id", boarderID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"boarder_id": boarderID}))
}

func (h *BoarderHandler) ListGuardians(w http.ResponseWriter, r *http.Request, boarderID string) {
	guardians, err := h.boarderService.ListGuardians(r.Context(), boarderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(guardians))
}

type guardianBody struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

func (h *BoarderHandler) AddGuardian(w http.ResponseWriter, r *http.Request, boarderID string) {
	var body guardianBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	guardianID, err := h.boarderService.AddGuardian(r.Context(), service.AddGuardianRequest{
		BoarderID:    boarderID,
		Name:         body.Name,
		Phone:        body.Phone,
		Relationship: body.Relationship,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"guardian_id": guardianID}))
}

func (h *BoarderHandler) UpdateGuardian(w http.ResponseWriter, r *http.Request, guardianID string) {
	var body guardianBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	err := h.boarderService.UpdateGuardian(r.Context(), guardianID, service.UpdateGuardianRequest{
		Name:         body.Name,
		Phone:        body.Phone,
		Relationship: body.Relationship,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"guardian_id": guardianID}))
}

func (h *BoarderHandler) RemoveGuardian(w http.ResponseWriter, r *http.Request, guardianID string) {
	if err := h.boarderService.RemoveGuardian(r.Context(), guardianID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"guardian_id": guardianID}))
}
