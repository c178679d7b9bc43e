package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizePrice validates a price value and canonicalises it to two decimal
// places. Accepted inputs are non-negative decimals with at most two digits
// after the point ("5", "5.9", "5.99"). Everything else is rejected.
func NormalizePrice(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("price is empty")
	}
	if strings.HasPrefix(trimmed, "+") || strings.HasPrefix(trimmed, "-") {
		return "", fmt.Errorf("price must be a non-negative decimal: %s", value)
	}

	whole := trimmed
	fraction := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		whole = trimmed[:idx]
		fraction = trimmed[idx+1:]
	}
	if whole == "" || len(fraction) > 2 {
		return "", fmt.Errorf("price must have at most two decimal places: %s", value)
	}
	if _, err := strconv.ParseUint(whole, 10, 32); err != nil {
		return "", fmt.Errorf("price must be a non-negative decimal: %s", value)
	}
	if fraction != "" {
		if _, err := strconv.ParseUint(fraction, 10, 32); err != nil {
			return "", fmt.Errorf("price must be a non-negative decimal: %s", value)
		}
	}

	for len(fraction) < 2 {
		fraction += "0"
	}
	return whole + "." + fraction, nil
}
