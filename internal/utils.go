package internal

import (
	"fmt"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// NewRunID creates a unique ID for one pipeline run.
// Format: YYYYMMDD-HHMMSS_uuid[:8]
func NewRunID() string {
	return fmt.Sprintf("%s_%s", time.Now().Format("20060102-150405"), uuid.New().String()[:8])
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}

// isAlphaNumeric checks if a rune is a letter or a digit in any script
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
