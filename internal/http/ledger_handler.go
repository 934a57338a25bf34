package httpapi

import (
	"net/http"
	"strings"
	"time"

	"bhms-data/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerHandler 押金账本 Handler
// 缴费/扣费是核心一致性写路径；余额不足的扣费返回 409 且不落任何记录
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *zap.Logger
}

// NewLedgerHandler 创建押金账本 Handler
func NewLedgerHandler(ledgerService service.LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *LedgerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/ledger/payments" && r.Method == http.MethodPost:
		h.RecordPayment(w, r)
	case path == "/api/v1/ledger/charges" && r.Method == http.MethodPost:
		h.RecordCharge(w, r)
	case strings.HasPrefix(path, "/api/v1/ledger/balance/") && r.Method == http.MethodGet:
		boarderID := strings.TrimPrefix(path, "/api/v1/ledger/balance/")
		if boarderID == "" || strings.Contains(boarderID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetBalance(w, r, boarderID)
	case strings.HasPrefix(path, "/api/v1/ledger/statement/") && r.Method == http.MethodGet:
		boarderID := strings.TrimPrefix(path, "/api/v1/ledger/statement/")
		if boarderID == "" || strings.Contains(boarderID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetStatement(w, r, boarderID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type paymentBody struct {
	BoarderID   string `json:"boarder_id"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	PaymentType string `json:"payment_type"`
	PaymentDate string `json:"payment_date"` // YYYY-MM-DD，缺省为今天
}

func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var body paymentBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid amount: "+body.Amount))
		return
	}
	paymentDate := time.Now()
	if body.PaymentDate != "" {
		paymentDate, err = parseDate(body.PaymentDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid payment_date: "+body.PaymentDate))
			return
		}
	}

	resp, err := h.ledgerService.RecordPayment(r.Context(), service.RecordPaymentRequest{
		BoarderID:   body.BoarderID,
		Amount:      amount,
		Method:      body.Method,
		PaymentType: body.PaymentType,
		PaymentDate: paymentDate,
	})
	if err != nil {
		h.logger.Error("RecordPayment failed",
			zap.String("boarder_id", body.BoarderID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

type chargeBody struct {
	BoarderID   string `json:"boarder_id"`
	Description string `json:"description"`
	ChargeType  string `json:"charge_type"`
	Amount      string `json:"amount"`
	ChargeDate  string `json:"charge_date"` // YYYY-MM-DD，缺省为今天
}

func (h *LedgerHandler) RecordCharge(w http.ResponseWriter, r *http.Request) {
	var body chargeBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid amount: "+body.Amount))
		return
	}
	chargeDate := time.Now()
	if body.ChargeDate != "" {
		chargeDate, err = parseDate(body.ChargeDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid charge_date: "+body.ChargeDate))
			return
		}
	}

	resp, err := h.ledgerService.RecordCharge(r.Context(), service.RecordChargeRequest{
		BoarderID:   body.BoarderID,
		Description: body.Description,
		ChargeType:  body.ChargeType,
		Amount:      amount,
		ChargeDate:  chargeDate,
	})
	if err != nil {
		// 余额不足是预期的业务拒绝，不按服务端错误记日志
		h.logger.Info("RecordCharge rejected or failed",
			zap.String("boarder_id", body.BoarderID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request, boarderID string) {
	resp, err := h.ledgerService.GetBalance(r.Context(), boarderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *LedgerHandler) GetStatement(w http.ResponseWriter, r *http.Request, boarderID string) {
	resp, err := h.ledgerService.GetStatement(r.Context(), boarderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
