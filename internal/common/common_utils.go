package common

import (
	"fmt"
	"strconv"
	"time"

	"skywatch/crewdeck/internal/apperrors"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// ParsePositiveInt reads an optional numeric query value, returning def
// when raw is empty.
func ParsePositiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperrors.Validation("expected a positive number, got %q", raw)
	}
	return n, nil
}
