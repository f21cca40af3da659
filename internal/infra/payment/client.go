package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shop/internal/usecase"

	"github.com/google/uuid"
)

// 外部決済ゲートウェイのHTTPクライアント。
// POST {base}/charges で同期確定し、参照IDを受け取る。
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type chargeRequest struct {
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	PaymentMethodToken string `json:"payment_method_token"`
	Confirm            bool   `json:"confirm"`
	//リダイレクト型の確認フローは受け付けない
	DisallowRedirects bool `json:"disallow_redirects"`
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) Charge(ctx context.Context, in usecase.ChargeInput) (usecase.ChargeResult, error) {
	body, err := json.Marshal(chargeRequest{
		Amount:             in.AmountMinor,
		Currency:           in.Currency,
		PaymentMethodToken: in.PaymentMethodToken,
		Confirm:            true,
		DisallowRedirects:  true,
	})
	if err != nil {
		return usecase.ChargeResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return usecase.ChargeResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	//同じリクエストの二重課金防止
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return usecase.ChargeResult{}, fmt.Errorf("payment gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return usecase.ChargeResult{}, fmt.Errorf("payment gateway: %w", err)
	}

	//402はカード拒否などの「正常な失敗」
	if resp.StatusCode == http.StatusPaymentRequired {
		return usecase.ChargeResult{}, usecase.ErrPaymentDeclined
	}
	if resp.StatusCode != http.StatusOK {
		return usecase.ChargeResult{}, fmt.Errorf("payment gateway: status %d", resp.StatusCode)
	}

	var out chargeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return usecase.ChargeResult{}, fmt.Errorf("payment gateway: %w", err)
	}

	if out.Status != "succeeded" {
		return usecase.ChargeResult{}, usecase.ErrPaymentDeclined
	}
	if out.ID == "" {
		return usecase.ChargeResult{}, fmt.Errorf("payment gateway: empty reference id")
	}

	return usecase.ChargeResult{ReferenceID: out.ID}, nil
}

type refundRequest struct {
	ChargeID string `json:"charge_id"`
}

func (c *Client) Refund(ctx context.Context, referenceID string) error {
	body, err := json.Marshal(refundRequest{ChargeID: referenceID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refunds", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment gateway: status %d", resp.StatusCode)
	}
	return nil
}
