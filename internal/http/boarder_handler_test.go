package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func createRoomViaAPI(t *testing.T, router *Router, number string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/rooms", map[string]any{
		"room_number": number,
		"rent":        "5000",
		"floor":       "1F",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeResult(t, rec)["room_id"].(string)
}

func getRoomStatus(t *testing.T, router *Router, roomID string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodGet, "/api/v1/rooms/"+roomID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Result.Status
}

func TestBoarderHandler_MoveInMoveOutFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	roomID := createRoomViaAPI(t, router, "101")

	// 带房间创建：房间立即 Occupied
	rec := doJSON(t, router, http.MethodPost, "/api/v1/boarders", map[string]any{
		"first_name": "Juan",
		"last_name":  "Dela Cruz",
		"email":      "flow@test.local",
		"room_id":    roomID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	boarderID := decodeResult(t, rec)["boarder_id"].(string)
	require.Equal(t, "Occupied", getRoomStatus(t, router, roomID))

	// 搬出：房间释放
	rec = doJSON(t, router, http.MethodPut, "/api/v1/boarders/"+boarderID+"/room", map[string]any{
		"room_id": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Available", getRoomStatus(t, router, roomID))
}

func TestBoarderHandler_MoveBetweenRooms(t *testing.T) {
	router, _ := newTestRouter(t)
	roomA := createRoomViaAPI(t, router, "201")
	roomB := createRoomViaAPI(t, router, "202")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/boarders", map[string]any{
		"first_name": "Maria",
		"last_name":  "Santos",
		"email":      "swap@test.local",
		"room_id":    roomA,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	boarderID := decodeResult(t, rec)["boarder_id"].(string)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/boarders/"+boarderID+"/room", map[string]any{
		"room_id": roomB,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Available", getRoomStatus(t, router, roomA))
	require.Equal(t, "Occupied", getRoomStatus(t, router, roomB))
}

func TestBoarderHandler_DuplicateEmailReturns409(t *testing.T) {
	router, _ := newTestRouter(t)

	body := map[string]any{
		"first_name": "Pedro",
		"last_name":  "Ramos",
		"email":      "dup-http@test.local",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/boarders", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/boarders", body)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestBoarderHandler_DeleteCascadesAndReleasesRoom(t *testing.T) {
	router, _ := newTestRouter(t)
	roomID := createRoomViaAPI(t, router, "301")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/boarders", map[string]any{
		"first_name": "Liza",
		"last_name":  "Cruz",
		"email":      "del-http@test.local",
		"room_id":    roomID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	boarderID := decodeResult(t, rec)["boarder_id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/ledger/payments", map[string]any{
		"boarder_id": boarderID,
		"amount":     "1000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/boarders/"+boarderID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// boarder 与账本消失，房间释放
	rec = doJSON(t, router, http.MethodGet, "/api/v1/boarders/"+boarderID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Available", getRoomStatus(t, router, roomID))

	rec = doJSON(t, router, http.MethodGet, "/api/v1/ledger/balance/"+boarderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeResult(t, rec)
	require.Equal(t, false, result["has_ledger"])
}

func TestRoomHandler_MaintenanceSticky(t *testing.T) {
	router, _ := newTestRouter(t)
	roomID := createRoomViaAPI(t, router, "401")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/boarders", map[string]any{
		"first_name": "Ana",
		"last_name":  "Reyes",
		"email":      "maint-http@test.local",
		"room_id":    roomID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	boarderID := decodeResult(t, rec)["boarder_id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/rooms/"+roomID+"/maintenance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Maintenance", getRoomStatus(t, router, roomID))

	// 搬出不覆盖维修标记
	rec = doJSON(t, router, http.MethodPut, "/api/v1/boarders/"+boarderID+"/room", map[string]any{
		"room_id": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Maintenance", getRoomStatus(t, router, roomID))

	// 解除维修后重算
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/rooms/"+roomID+"/maintenance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Available", getRoomStatus(t, router, roomID))
}
