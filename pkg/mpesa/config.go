package mpesa

import (
	"fmt"
	"strings"
	"time"
)

const (
	SandboxBaseURL = "https://sandbox.safaricom.co.ke"

	tokenPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath  = "/mpesa/stkpush/v1/processrequest"
	timestampFmt = "20060102150405"

	CountryCode = "254"

	TransactionTypePayBillOnline = "CustomerPayBillOnline"

	DefaultAccountReference = "BimaBora Insurance"
	DefaultTransactionDesc  = "Insurance Premium Payment"

	DefaultTimeout  = 10 * time.Second
	DefaultTokenTTL = 50 * time.Minute
)

// Config is the static integration configuration shared by the credential
// cache, request builder and gateway client.
type Config struct {
	BaseURL        string
	ShortCode      string
	PassKey        string
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string

	// Timeout bounds every outbound call. Zero means DefaultTimeout.
	Timeout time.Duration
	// TokenTTL caps how long an access token is reused. Zero disables caching.
	TokenTTL time.Duration
	// Location is the integration's wall clock used for request timestamps.
	Location *time.Location
}

// Validate reports every missing required field at once.
func (c Config) Validate() error {
	var missing []string
	if c.ShortCode == "" {
		missing = append(missing, "shortcode")
	}
	if c.PassKey == "" {
		missing = append(missing, "passkey")
	}
	if c.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) baseURL() string {
	if c.BaseURL == "" {
		return SandboxBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
