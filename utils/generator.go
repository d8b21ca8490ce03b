package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const digitBytes = "0123456789"

var digitCount = big.NewInt(int64(len(digitBytes)))

// GenerateOTP returns a numeric one-time code of the given length.
// Codes gate account access, so digits come from the crypto source,
// which is also safe for concurrent callers.
func GenerateOTP(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, digitCount)
		if err != nil {
			panic("otp generation: " + err.Error())
		}
		b[i] = digitBytes[n.Int64()]
	}
	return string(b)
}

// NormalizeEmail lowercases and trims an address so email uniqueness
// is case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
