// File: internal/services/sms/config.go
package sms

import (
	"fmt"
	"time"
)

type Config struct {
	AccessKey  string
	TemplateID int
	APIURL     string
	Timeout    time.Duration
}

func (c *Config) Validate() error {
	if c.AccessKey == "" {
		return &SMSError{Type: ErrTypeConfig, Message: "SMS_ACCESS_KEY is required"}
	}
	if c.APIURL == "" {
		return &SMSError{Type: ErrTypeConfig, Message: "SMS_API_URL is required"}
	}
	if c.TemplateID == 0 {
		return &SMSError{Type: ErrTypeConfig, Message: fmt.Sprintf("SMS_TEMPLATE_ID is required, got %d", c.TemplateID)}
	}
	return nil
}

// Configured reports whether enough settings are present to reach the gateway.
func (c *Config) Configured() bool {
	return c.AccessKey != "" && c.APIURL != "" && c.TemplateID != 0
}
