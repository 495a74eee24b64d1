// internal/daily/daily.go
//
// Daily puzzle seeding. Every player gets the same grid on a given UTC day:
// the generator seed is derived from HMAC-SHA256(salt, YYYY-MM-DD).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the generator seed for the day containing t.
func Seed(t time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty of entropy for a PCG seed
	return binary.BigEndian.Uint64(sum[:8])
}
