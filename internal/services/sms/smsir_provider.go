// File: internal/services/sms/smsir_provider.go
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// SMSIRProvider posts verify templates to an sms.ir compatible JSON API.
type SMSIRProvider struct {
	config *Config
	client *http.Client
}

func NewSMSIRProvider(config *Config) *SMSIRProvider {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SMSIRProvider{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *SMSIRProvider) SendVerificationCode(ctx context.Context, phone, code string) error {
	if err := p.config.Validate(); err != nil {
		return err
	}
	mobile := strings.TrimPrefix(phone, "+")
	if mobile == "" {
		return &SMSError{Type: ErrTypeValidation, Message: "phone number is required"}
	}

	payload := map[string]interface{}{
		"mobile":     mobile,
		"templateId": p.config.TemplateID,
		"parameters": []map[string]string{
			{"name": "Code", "value": code},
		},
	}
	return p.sendRequest(ctx, payload)
}

func (p *SMSIRProvider) sendRequest(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &SMSError{Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIURL, bytes.NewBuffer(body))
	if err != nil {
		return &SMSError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", p.config.AccessKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return &SMSError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	return p.handleResponse(resp)
}

func (p *SMSIRProvider) handleResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode == http.StatusTooManyRequests {
		return &SMSError{Type: ErrTypeRateLimit, Code: resp.StatusCode, Message: "rate limit exceeded"}
	}
	return &SMSError{Type: ErrTypeProvider, Code: resp.StatusCode, Message: string(responseBody)}
}

// HealthCheck only verifies configuration; the gateway has no status endpoint.
func (p *SMSIRProvider) HealthCheck(ctx context.Context) error {
	return p.config.Validate()
}
