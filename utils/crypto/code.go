package crypto

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is the 36-character set plan codes are drawn from.
// Uppercase-only keeps codes easy to read back over the phone.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode creates a cryptographically secure random code of uppercase
// letters and digits. Rejection sampling keeps the distribution uniform:
// 252 is the largest multiple of 36 below 256, so bytes at or above it are
// discarded instead of biasing the low end of the alphabet.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length: %d", length)
	}

	const maxRandomByte = 252

	code := make([]byte, length)
	buf := make([]byte, length*2)
	written := 0

	for written < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read secure random bytes: %w", err)
		}

		for _, b := range buf {
			if b >= maxRandomByte {
				continue
			}
			code[written] = codeAlphabet[int(b)%len(codeAlphabet)]
			written++
			if written == length {
				break
			}
		}
	}

	return string(code), nil
}
