package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	orderNumberPrefix  = "ORD"
	orderNumberSuffix  = 6
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateOrderNumber produces ORD-<YYYYMMDDHHMMSS>-<6 random alphanumerics>.
// Uniqueness is enforced by the DB index; callers retry on collision.
func GenerateOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, orderNumberSuffix)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.UTC().Format("20060102150405"), string(buf)), nil
}
