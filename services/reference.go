package services

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// GenerateReference returns a payment reference: prefix + epoch millis +
// random base-36 fragment, upper-cased. Uniqueness rides on entropy plus the
// unique index on payments.reference.
func GenerateReference(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	frag := strconv.FormatInt(rand.Int63n(1<<40), 36)
	return strings.ToUpper(prefix + ts + frag)
}

// NewTransactionID mints a synthetic gateway transaction id for simulated
// charges.
func NewTransactionID() string {
	return "TXN-" + ulid.Make().String()
}
