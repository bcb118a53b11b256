package buildinfo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateSystemID returns a fresh per-install identifier in
// XXXX-XXXX-XXXX hex form: human-typeable for support requests, and
// derived from a random UUID so it carries no installation details.
func GenerateSystemID() (string, error) {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	return fmt.Sprintf("%s-%s-%s", hex[0:4], hex[4:8], hex[8:12]), nil
}

// IsValidSystemID reports whether id matches the XXXX-XXXX-XXXX hex
// format GenerateSystemID produces.
func IsValidSystemID(id string) bool {
	if len(id) != 14 || id[4] != '-' || id[9] != '-' {
		return false
	}
	for i, c := range id {
		if i == 4 || i == 9 {
			continue
		}
		if !isHexDigit(byte(c)) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
