package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ConnectClient talks to a connect-style transfer API over HTTP. Every
// mutating call carries the Idempotency-Key header so retries are safe.
type ConnectClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewConnectClient(baseURL, apiKey string) *ConnectClient {
	return &ConnectClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *ConnectClient) CreateTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	body := map[string]interface{}{
		"destination": req.DestinationAccountID,
		"amount":      req.AmountCents,
		"currency":    req.Currency,
		"description": req.Description,
	}
	if body["currency"] == "" {
		body["currency"] = "usd"
	}
	bodyBytes, _ := json.Marshal(body)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/transfers", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	apiReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	log.Printf("[Processor] POST /v1/transfers dest=%s amount=%d key=%s", req.DestinationAccountID, req.AmountCents, req.IdempotencyKey)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("transfer api: %d %s", resp.StatusCode, string(respBody))
	}
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &TransferResponse{TransferID: out.ID, Status: out.Status}, nil
}

func (p *ConnectClient) GetTransferStatus(ctx context.Context, transferID string) (string, error) {
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/transfers/"+transferID, nil)
	if err != nil {
		return "", err
	}
	apiReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transfer status api: %d %s", resp.StatusCode, string(respBody))
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (p *ConnectClient) CheckOnboardingStatus(ctx context.Context, accountID string) (*OnboardingStatus, error) {
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/accounts/"+accountID, nil)
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("account api: %d %s", resp.StatusCode, string(respBody))
	}
	var out OnboardingStatus
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
