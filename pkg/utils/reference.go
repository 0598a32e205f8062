package utils

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewTransactionReference builds a local reference for payments that settle
// without a provider, e.g. TR17608032000001234.
func NewTransactionReference(at time.Time) string {
	return fmt.Sprintf("TR%d%04d", at.UnixMilli(), rand.IntN(10000))
}
