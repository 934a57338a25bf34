package httpapi

import (
	"net/http"
	"strings"

	"bhms-data/internal/domain"
	"bhms-data/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StaffHandler 管理层级 Handler（owners / caretakers / employees）
type StaffHandler struct {
	staffService service.StaffService
	logger       *zap.Logger
}

// NewStaffHandler 创建管理层级 Handler
func NewStaffHandler(staffService service.StaffService, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{staffService: staffService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *StaffHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/owners" && r.Method == http.MethodGet:
		h.ListOwners(w, r)
	case path == "/api/v1/owners" && r.Method == http.MethodPost:
		h.CreateOwner(w, r)
	case path == "/api/v1/caretakers" && r.Method == http.MethodGet:
		h.ListCaretakers(w, r)
	case path == "/api/v1/caretakers" && r.Method == http.MethodPost:
		h.CreateCaretaker(w, r)
	case strings.HasPrefix(path, "/api/v1/caretakers/") && r.Method == http.MethodGet:
		caretakerID := strings.TrimPrefix(path, "/api/v1/caretakers/")
		if caretakerID == "" || strings.Contains(caretakerID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetCaretaker(w, r, caretakerID)
	case path == "/api/v1/employees" && r.Method == http.MethodGet:
		h.ListEmployees(w, r)
	case path == "/api/v1/employees" && r.Method == http.MethodPost:
		h.CreateEmployee(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *StaffHandler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.staffService.ListOwners(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(owners))
}

type staffBody struct {
	OwnerID     string `json:"owner_id"`
	CaretakerID string `json:"caretaker_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Position    string `json:"position"`
	Salary      string `json:"salary"`
}

func (h *StaffHandler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var body staffBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	id, err := h.staffService.CreateOwner(r.Context(), &domain.Owner{
		Name:  body.Name,
		Phone: body.Phone,
		Email: body.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"owner_id": id}))
}

func (h *StaffHandler) ListCaretakers(w http.ResponseWriter, r *http.Request) {
	caretakers, err := h.staffService.ListCaretakers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(caretakers))
}

func (h *StaffHandler) GetCaretaker(w http.ResponseWriter, r *http.Request, caretakerID string) {
	caretaker, err := h.staffService.GetCaretaker(r.Context(), caretakerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(caretaker))
}

func (h *StaffHandler) CreateCaretaker(w http.ResponseWriter, r *http.Request) {
	var body staffBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	id, err := h.staffService.CreateCaretaker(r.Context(), &domain.Caretaker{
		OwnerID: body.OwnerID,
		Name:    body.Name,
		Phone:   body.Phone,
		Email:   body.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"caretaker_id": id}))
}

func (h *StaffHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	caretakerID := strings.TrimSpace(r.URL.Query().Get("caretaker_id"))
	employees, err := h.staffService.ListEmployees(r.Context(), caretakerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(employees))
}

func (h *StaffHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var body staffBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	salary := decimal.Zero
	if body.Salary != "" {
		var err error
		salary, err = decimal.NewFromString(body.Salary)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid salary: "+body.Salary))
			return
		}
	}

	id, err := h.staffService.CreateEmployee(r.Context(), &domain.Employee{
		CaretakerID: body.CaretakerID,
		Name:        body.Name,
		Position:    body.Position,
		Phone:       body.Phone,
		Salary:      salary,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"employee_id": id}))
}
