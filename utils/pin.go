package utils

import (
	"errors"
	"fmt"
	"math/rand"
)

const MaxPINAttempts = 100

var ErrPINExhausted = fmt.Errorf("failed to generate unique PIN after %d attempts", MaxPINAttempts)

// IntSource is the subset of *rand.Rand used for PIN generation.
type IntSource interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// DefaultIntSource draws from math/rand's global source.
var DefaultIntSource IntSource = globalRand{}

// GeneratePIN returns a random 4-digit PIN not present in existing, trying at
// most MaxPINAttempts times.
func GeneratePIN(existing []string, src IntSource) (string, error) {
	if src == nil {
		return "", errors.New("nil random source")
	}
	taken := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		taken[p] = struct{}{}
	}

	for i := 0; i < MaxPINAttempts; i++ {
		pin := fmt.Sprintf("%04d", src.Intn(10000))
		if _, ok := taken[pin]; !ok {
			return pin, nil
		}
	}
	return "", ErrPINExhausted
}
