package mpesa

import (
	"encoding/base64"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

var (
	nonDigits     = regexp.MustCompile(`\D`)
	msisdnPattern = regexp.MustCompile(`^254\d{9}$`)
)

// PushRequest is the STK push body sent to the processrequest endpoint.
type PushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// NormalizePhone strips everything but digits and rewrites the result into
// the international 254XXXXXXXXX form. The length is checked by ValidatePhone.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case strings.HasPrefix(digits, "0"):
		return CountryCode + digits[1:]
	case strings.HasPrefix(digits, CountryCode):
		return digits
	default:
		return CountryCode + digits
	}
}

// ValidatePhone normalizes phone and checks it is a routable 254XXXXXXXXX
// subscriber number.
func ValidatePhone(phone string) (string, error) {
	normalized := NormalizePhone(phone)
	if !msisdnPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	return normalized, nil
}

// Password derives the per-request transaction password.
func Password(shortCode, passKey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passKey + timestamp))
}

// FormatTimestamp renders t as YYYYMMDDHHmmss in loc.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timestampFmt)
}

// RoundAmount converts a premium to whole currency units.
func RoundAmount(amount float64) int64 {
	return int64(math.Round(amount))
}

type RequestBuilder struct {
	shortCode   string
	passKey     string
	callbackURL string
	loc         *time.Location
}

func NewRequestBuilder(cfg Config) (*RequestBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RequestBuilder{
		shortCode:   cfg.ShortCode,
		passKey:     cfg.PassKey,
		callbackURL: cfg.CallbackURL,
		loc:         cfg.location(),
	}, nil
}

// BuildRequest is pure: identical inputs and timestamp yield an identical request.
func (b *RequestBuilder) BuildRequest(phoneNumber string, amount float64, accountReference, description string, at time.Time) PushRequest {
	timestamp := FormatTimestamp(at, b.loc)
	phone := NormalizePhone(phoneNumber)

	if strings.TrimSpace(accountReference) == "" {
		accountReference = DefaultAccountReference
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultTransactionDesc
	}

	return PushRequest{
		BusinessShortCode: b.shortCode,
		Password:          Password(b.shortCode, b.passKey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   TransactionTypePayBillOnline,
		Amount:            RoundAmount(amount),
		PartyA:            phone,
		PartyB:            b.shortCode,
		PhoneNumber:       phone,
		CallBackURL:       b.callbackURL,
		AccountReference:  accountReference,
		TransactionDesc:   description,
	}
}
