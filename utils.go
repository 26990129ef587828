package lotofacil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidateCount validates the requested number of games
func ValidateCount(count int) error {
	if count <= 0 {
		return ErrInvalidCount.WithDetails(fmt.Sprintf("count=%d", count))
	}
	return nil
}

// NewSessionID returns a fresh identifier for a generation session
func NewSessionID() string { return uuid.NewString() }

// StripCodeFence removes markdown code-fence markup (```json and ```) that a
// backend may wrap around its JSON even when told not to.
func StripCodeFence(payload string) string {
	payload = strings.ReplaceAll(payload, "```json", "")
	payload = strings.ReplaceAll(payload, "```JSON", "")
	payload = strings.ReplaceAll(payload, "```", "")
	return strings.TrimSpace(payload)
}

// generateLockValue generates a unique lock value using crypto/rand
func generateLockValue() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based value if crypto/rand fails
		return fmt.Sprintf("lock_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
