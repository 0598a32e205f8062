package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GatewayAck is the provider's synchronous answer to a push request. It only
// confirms the prompt was dispatched to the subscriber's phone.
type GatewayAck struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

const responseCodeAccepted = "0"

// GatewayClient is a thin transport wrapper around the STK push endpoint.
type GatewayClient struct {
	pushURL    string
	httpClient *http.Client
}

func NewGatewayClient(cfg Config, httpClient *http.Client) *GatewayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout()}
	}
	return &GatewayClient{
		pushURL:    cfg.baseURL() + stkPushPath,
		httpClient: httpClient,
	}
}

func (g *GatewayClient) SendPushRequest(ctx context.Context, token string, pushReq PushRequest) (*GatewayAck, error) {
	payload, err := json.Marshal(pushReq)
	if err != nil {
		return nil, fmt.Errorf("encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.pushURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrGatewayAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusBadGateway ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, rejected(resp.StatusCode, body)
	}

	var ack GatewayAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGatewayUnavailable, err)
	}
	if ack.ResponseCode != responseCodeAccepted {
		return nil, &GatewayRejectedError{
			StatusCode: resp.StatusCode,
			Code:       ack.ResponseCode,
			Message:    ack.ResponseDescription,
		}
	}

	return &ack, nil
}

func rejected(status int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.ErrorMessage == "" {
		return &GatewayRejectedError{StatusCode: status, Message: http.StatusText(status)}
	}
	return &GatewayRejectedError{
		StatusCode: status,
		Code:       errResp.ErrorCode,
		Message:    errResp.ErrorMessage,
	}
}
