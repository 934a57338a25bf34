package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func setupReportTestData(t *testing.T) (ReportService, string) {
	t.Helper()
	mem := repository.NewMemoryStore()
	ctx := context.Background()

	boarderID, err := mem.CreateBoarder(ctx, &domain.Boarder{
		FirstName: "Pedro",
		LastName:  "Ramos",
		Email:     "report@test.local",
	})
	require.NoError(t, err)

	day := func(d int) time.Time {
		return time.Date(2026, time.July, d, 10, 0, 0, 0, time.UTC)
	}
	for _, amount := range []int64{5000, 2500} {
		_, err := mem.RecordPayment(ctx, &domain.Payment{
			BoarderID:   boarderID,
			Amount:      decimal.NewFromInt(amount),
			PaymentType: "Rent",
			PaymentDate: day(5),
		})
		require.NoError(t, err)
	}
	_, err = mem.RecordCharge(ctx, &domain.Charge{
		BoarderID:  boarderID,
		ChargeType: "Utility",
		Amount:     decimal.NewFromInt(1200),
		ChargeDate: day(20),
	})
	require.NoError(t, err)

	return NewReportService(mem, zap.NewNop()), boarderID
}

func TestReportService_GetTotalIncome(t *testing.T) {
	svc, _ := setupReportTestData(t)
	ctx := context.Background()

	start := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.July, 31, 23, 59, 59, 0, time.UTC)

	report, err := svc.GetTotalIncome(ctx, start, end)
	require.NoError(t, err)
	require.True(t, report.TotalPayments.Equal(decimal.NewFromInt(7500)))
	require.True(t, report.TotalCharges.Equal(decimal.NewFromInt(1200)))
	require.True(t, report.NetIncome.Equal(decimal.NewFromInt(6300)))
}

func TestReportService_GetTotalIncome_EmptyRange(t *testing.T) {
	svc, _ := setupReportTestData(t)
	ctx := context.Background()

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	report, err := svc.GetTotalIncome(ctx, start, end)
	require.NoError(t, err)
	require.True(t, report.TotalPayments.IsZero())
	require.True(t, report.TotalCharges.IsZero())
}

func TestReportService_GetTotalIncome_InvertedRangeRejected(t *testing.T) {
	svc, _ := setupReportTestData(t)
	ctx := context.Background()

	start := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetTotalIncome(ctx, start, end)
	require.Error(t, err)
}

func TestReportService_ExportIncomeReport(t *testing.T) {
	svc, _ := setupReportTestData(t)
	ctx := context.Background()

	start := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.July, 31, 23, 59, 59, 0, time.UTC)

	data, err := svc.ExportIncomeReport(ctx, start, end)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// 导出的 workbook 必须有三个 sheet 且 Summary 合计与报表一致
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.ElementsMatch(t, []string{"Summary", "Payments", "Charges"}, f.GetSheetList())

	total, err := f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	require.Equal(t, "7500.00", total)

	rows, err := f.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 payments
}
