package service

import (
	"context"
	"fmt"
	"time"

	"bhms-data/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentReceipt 缴费回执（POST 到配置的 webhook）
type PaymentReceipt struct {
	PaymentID string          `json:"payment_id"`
	BoarderID string          `json:"boarder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// ReceiptClient 缴费回执推送客户端（RECEIPT_ENABLED=true 时启用）
type ReceiptClient struct {
	httpClient *resty.Client
	webhookURL string
	logger     *zap.Logger
}

// NewReceiptClient 创建回执推送客户端；配置未启用时返回 nil
func NewReceiptClient(cfg config.ReceiptConfig, logger *zap.Logger) *ReceiptClient {
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return nil
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}

	return &ReceiptClient{
		httpClient: client,
		webhookURL: cfg.WebhookURL,
		logger:     logger,
	}
}

// SendPaymentReceipt 推送单条缴费回执
func (c *ReceiptClient) SendPaymentReceipt(ctx context.Context, receipt PaymentReceipt) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(receipt).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to post receipt: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("receipt webhook returned status %d", resp.StatusCode())
	}

	c.logger.Debug("payment receipt pushed",
		zap.String("payment_id", receipt.PaymentID),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}
