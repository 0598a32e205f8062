package mpesa

import (
	"encoding/json"
	"strconv"
)

// CallbackEnvelope is the body the provider POSTs to CallBackURL once the
// subscriber accepts, declines or ignores the prompt.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// CallbackAck is what the provider expects back from the callback endpoint.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func (s StkCallback) Succeeded() bool { return s.ResultCode == 0 }

func (s StkCallback) ReceiptNumber() string {
	v, _ := s.item("MpesaReceiptNumber")
	return v
}

func (s StkCallback) Amount() (float64, bool) {
	v, ok := s.item("Amount")
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func (s StkCallback) PhoneNumber() string {
	v, _ := s.item("PhoneNumber")
	return v
}

// item returns the metadata value as a string whether the provider sent it
// as a JSON string or a number.
func (s StkCallback) item(name string) (string, bool) {
	if s.CallbackMetadata == nil {
		return "", false
	}
	for _, it := range s.CallbackMetadata.Item {
		if it.Name != name || len(it.Value) == 0 {
			continue
		}
		var str string
		if err := json.Unmarshal(it.Value, &str); err == nil {
			return str, true
		}
		var num json.Number
		if err := json.Unmarshal(it.Value, &num); err == nil {
			return num.String(), true
		}
	}
	return "", false
}
