package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRoutes 注册全部业务路由
// 各 Handler 内部按路径后缀/方法二次分发（见各自的 ServeHTTP）
func (r *Router) RegisterRoutes(
	rooms *RoomHandler,
	boarders *BoarderHandler,
	ledger *LedgerHandler,
	bookings *BookingHandler,
	reports *ReportHandler,
	staff *StaffHandler,
) {
	// rooms
	r.HandleHandler("/api/v1/rooms", rooms)
	r.HandleHandler("/api/v1/rooms/", rooms)

	// boarders + guardians
	r.HandleHandler("/api/v1/boarders", boarders)
	r.HandleHandler("/api/v1/boarders/", boarders)
	r.HandleHandler("/api/v1/guardians/", boarders)

	// deposit ledger
	r.HandleHandler("/api/v1/ledger/", ledger)

	// bookings
	r.HandleHandler("/api/v1/bookings", bookings)
	r.HandleHandler("/api/v1/bookings/", bookings)

	// reports
	r.HandleHandler("/api/v1/reports/", reports)

	// staff hierarchy
	r.HandleHandler("/api/v1/owners", staff)
	r.HandleHandler("/api/v1/caretakers", staff)
	r.HandleHandler("/api/v1/caretakers/", staff)
	r.HandleHandler("/api/v1/employees", staff)

	// health
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
}
