package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bhms-data/internal/service"

	"go.uber.org/zap"
)

// ReportHandler 收入报表 Handler
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler 创建收入报表 Handler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/reports/income" && r.Method == http.MethodGet:
		h.GetIncome(w, r)
	case path == "/api/v1/reports/income/export" && r.Method == http.MethodGet:
		h.ExportIncome(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// parseRange 解析 start/end 查询参数；缺省为本月 1 号到今天
func (h *ReportHandler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := now

	if s := strings.TrimSpace(r.URL.Query().Get("start")); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date: %s", s)
		}
		start = t
	}
	if s := strings.TrimSpace(r.URL.Query().Get("end")); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date: %s", s)
		}
		// 闭区间：end 日期整天都算在内
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

func (h *ReportHandler) GetIncome(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	report, err := h.reportService.GetTotalIncome(r.Context(), start, end)
	if err != nil {
		h.logger.Error("GetTotalIncome failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(report))
}

func (h *ReportHandler) ExportIncome(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	data, err := h.reportService.ExportIncomeReport(r.Context(), start, end)
	if err != nil {
		h.logger.Error("ExportIncomeReport failed", zap.Error(err))
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("income-report-%s-%s.xlsx",
		start.Format("20060102"), end.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
