// Package utils provides common utility functions.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// HexToInt64 converts a hex quantity (e.g., "0x1a") to int64.
func HexToInt64(hexStr string) (int64, error) {
	cleaned, err := cleanHex(hexStr)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(cleaned, 16, 64)
}

// HexToUint64 converts a hex quantity (e.g., "0x1a") to uint64.
func HexToUint64(hexStr string) (uint64, error) {
	cleaned, err := cleanHex(hexStr)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(cleaned, 16, 64)
}

// HexToUint64OrZero is HexToUint64 for optional fields: an empty string yields 0.
func HexToUint64OrZero(hexStr string) (uint64, error) {
	if strings.TrimSpace(hexStr) == "" {
		return 0, nil
	}
	return HexToUint64(hexStr)
}

func cleanHex(hexStr string) (string, error) {
	cleaned := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hexStr)), "0x")
	if cleaned == "" {
		return "", fmt.Errorf("empty hex string")
	}
	return cleaned, nil
}
