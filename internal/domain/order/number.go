package order

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewNumber returns ORD-<unix millis>-<9 base36 chars>. The suffix keeps
// collisions negligible; the unique index on order_number is the backstop.
func NewNumber(now time.Time) string {
	return FormatNumber(now, uuid.New())
}

func FormatNumber(now time.Time, entropy uuid.UUID) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = numberAlphabet[int(entropy[i])%len(numberAlphabet)]
	}
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix)
}
