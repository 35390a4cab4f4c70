package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// NewOrderNumber builds a human-readable, globally unique order number:
// ORD-YYYYMMDD-XXXXXX with a random hex suffix. The orders table keeps a
// unique constraint on it as the final guarantee.
func NewOrderNumber() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("ORD-%s-%X", time.Now().Format("20060102"), buf)
}
