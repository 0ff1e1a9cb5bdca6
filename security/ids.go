package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NewApplicationID returns an identifier of the form APP_<unix-ms>_<16 upper-case hex>.
func NewApplicationID(now time.Time) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: failed to read random bytes: %w", err)
	}
	return fmt.Sprintf("APP_%d_%s", now.UnixMilli(), strings.ToUpper(hex.EncodeToString(buf))), nil
}
