package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"
	"bhms-data/internal/service"
	"bhms-data/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRouter 全栈测试路由（内存仓储 + 内存缓存）
func newTestRouter(t *testing.T) (*Router, *repository.MemoryStore) {
	t.Helper()
	mem := repository.NewMemoryStore()
	kv := store.NewMemoryKV()
	log := zap.NewNop()

	ledgerSvc := service.NewLedgerService(mem, kv, nil, log)
	boarderSvc := service.NewBoarderService(mem, mem, ledgerSvc, log)
	roomSvc := service.NewRoomService(mem, log)
	bookingSvc := service.NewBookingService(mem, mem, log)
	reportSvc := service.NewReportService(mem, log)
	staffSvc := service.NewStaffService(mem, log)

	router := NewRouter(log)
	router.RegisterRoutes(
		NewRoomHandler(roomSvc, log),
		NewBoarderHandler(boarderSvc, log),
		NewLedgerHandler(ledgerSvc, log),
		NewBookingHandler(bookingSvc, log),
		NewReportHandler(reportSvc, log),
		NewStaffHandler(staffSvc, log),
	)
	return router, mem
}

func doJSON(t *testing.T, router *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Code   int            `json:"code"`
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Result
}

func createBoarderViaStore(t *testing.T, mem *repository.MemoryStore, email string) string {
	t.Helper()
	id, err := mem.CreateBoarder(context.Background(), &domain.Boarder{
		FirstName: "Liza",
		LastName:  "Cruz",
		Phone:     "0918-111-2222",
		Email:     email,
	})
	require.NoError(t, err)
	return id
}

func TestLedgerHandler_PaymentThenBalance(t *testing.T) {
	router, mem := newTestRouter(t)
	boarderID := createBoarderViaStore(t, mem, "http-pay@test.local")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ledger/payments", map[string]any{
		"boarder_id":   boarderID,
		"amount":       "3000",
		"method":       "Cash",
		"payment_type": "Deposit",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)
	require.NotEmpty(t, result["payment_id"])
	require.Equal(t, "3000", result["balance"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/ledger/balance/"+boarderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result = decodeResult(t, rec)
	require.Equal(t, "3000", result["balance"])
	require.Equal(t, true, result["has_ledger"])
}

func TestLedgerHandler_OverchargeReturns409(t *testing.T) {
	router, mem := newTestRouter(t)
	boarderID := createBoarderViaStore(t, mem, "http-409@test.local")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ledger/payments", map[string]any{
		"boarder_id": boarderID,
		"amount":     "500",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/ledger/charges", map[string]any{
		"boarder_id":  boarderID,
		"amount":      "900",
		"charge_type": "Damage",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// 拒绝后余额与流水不变
	rec = doJSON(t, router, http.MethodGet, "/api/v1/ledger/statement/"+boarderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Result struct {
			Balance string           `json:"balance"`
			Charges []map[string]any `json:"charges"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "500", envelope.Result.Balance)
	require.Empty(t, envelope.Result.Charges)
}

func TestLedgerHandler_InvalidAmountReturns400(t *testing.T) {
	router, mem := newTestRouter(t)
	boarderID := createBoarderViaStore(t, mem, "http-400@test.local")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ledger/payments", map[string]any{
		"boarder_id": boarderID,
		"amount":     "not-a-number",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/ledger/payments", map[string]any{
		"boarder_id": boarderID,
		"amount":     "-10",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerHandler_UnknownBoarderReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ledger/payments", map[string]any{
		"boarder_id": "00000000-0000-0000-0000-00000000dead",
		"amount":     "100",
	})
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}
