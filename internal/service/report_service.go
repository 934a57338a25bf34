package service

import (
	"context"
	"fmt"
	"time"

	"bhms-data/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService 收入报表服务接口
//
// 收入统计是只读聚合：任何时点的合计都来自已提交的流水，余额规则
// （缴费累加、余额不足拒绝扣费）保证了报表不会统计到半笔操作。
type ReportService interface {
	// 区间收入合计（闭区间 [start, end]；无记录时各项为 0）
	GetTotalIncome(ctx context.Context, start, end time.Time) (*IncomeReport, error)

	// 导出 Excel 报表（Summary + Payments + Charges 三个 sheet）
	ExportIncomeReport(ctx context.Context, start, end time.Time) ([]byte, error)
}

type reportService struct {
	ledgerRepo repository.LedgerRepository
	logger     *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(ledgerRepo repository.LedgerRepository, logger *zap.Logger) ReportService {
	return &reportService{ledgerRepo: ledgerRepo, logger: logger}
}

// IncomeReport 区间收入报表
type IncomeReport struct {
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	TotalPayments decimal.Decimal `json:"total_payments"` // 区间内缴费合计（即总收入）
	TotalCharges  decimal.Decimal `json:"total_charges"`  // 区间内押金扣费合计
	NetIncome     decimal.Decimal `json:"net_income"`     // 缴费合计 - 扣费合计
}

func (s *reportService) GetTotalIncome(ctx context.Context, start, end time.Time) (*IncomeReport, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	totalPayments, totalCharges, err := s.ledgerRepo.SumIncome(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &IncomeReport{
		StartDate:     start,
		EndDate:       end,
		TotalPayments: totalPayments,
		TotalCharges:  totalCharges,
		NetIncome:     totalPayments.Sub(totalCharges),
	}, nil
}

func (s *reportService) ExportIncomeReport(ctx context.Context, start, end time.Time) ([]byte, error) {
	report, err := s.GetTotalIncome(ctx, start, end)
	if err != nil {
		return nil, err
	}
	payments, err := s.ledgerRepo.ListPaymentsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	charges, err := s.ledgerRepo.ListChargesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	// Summary sheet
	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	summaryRows := [][]interface{}{
		{"Income Report"},
		{"Start Date", report.StartDate.Format("2006-01-02")},
		{"End Date", report.EndDate.Format("2006-01-02")},
		{"Total Payments", report.TotalPayments.StringFixed(2)},
		{"Total Charges", report.TotalCharges.StringFixed(2)},
		{"Net Income", report.NetIncome.StringFixed(2)},
		{"Payment Count", len(payments)},
		{"Charge Count", len(charges)},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary sheet: %w", err)
		}
	}

	// Payments sheet
	paymentsSheet := "Payments"
	if _, err := f.NewSheet(paymentsSheet); err != nil {
		return nil, fmt.Errorf("failed to create payments sheet: %w", err)
	}
	header := []interface{}{"Payment ID", "Boarder ID", "Amount", "Method", "Type", "Date"}
	if err := f.SetSheetRow(paymentsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write payments header: %w", err)
	}
	for i, p := range payments {
		row := []interface{}{
			p.PaymentID, p.BoarderID, p.Amount.StringFixed(2),
			p.Method, p.PaymentType, p.PaymentDate.Format("2006-01-02"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(paymentsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write payment row: %w", err)
		}
	}

	// Charges sheet
	chargesSheet := "Charges"
	if _, err := f.NewSheet(chargesSheet); err != nil {
		return nil, fmt.Errorf("failed to create charges sheet: %w", err)
	}
	header = []interface{}{"Charge ID", "Boarder ID", "Amount", "Type", "Description", "Date"}
	if err := f.SetSheetRow(chargesSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write charges header: %w", err)
	}
	for i, c := range charges {
		row := []interface{}{
			c.ChargeID, c.BoarderID, c.Amount.StringFixed(2),
			c.ChargeType, c.Description, c.ChargeDate.Format("2006-01-02"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(chargesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write charge row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("income report exported",
		zap.String("start", start.Format("2006-01-02")),
		zap.String("end", end.Format("2006-01-02")),
		zap.Int("payments", len(payments)),
		zap.Int("charges", len(charges)),
	)
	return buf.Bytes(), nil
}
