// File: internal/services/sms/interface.go
package sms

import "context"

// Provider delivers one-time codes by SMS.
type Provider interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
	HealthCheck(ctx context.Context) error
}
