package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PickIndex returns a uniformly distributed index in [0, n).
func PickIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("cannot pick from empty set")
	}
	j, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(j.Int64()), nil
}

// Code generates a short referral code over an alphabet without ambiguous
// characters (no 0/O, 1/I).
func Code(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		j, err := PickIndex(len(codeAlphabet))
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[j]
	}
	return string(buf), nil
}
