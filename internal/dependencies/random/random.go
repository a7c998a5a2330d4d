package random

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// URLSafeAlphabet is the base64url alphabet, safe in query strings and deep links
const URLSafeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Random provides random values that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string

	// UUID returns a random (version 4) UUID string
	UUID() string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return 0
	}
	return int(result.Int64())
}

// String generates a random string of the given length from the given
// alphabet. Bytes that would bias the modulo are rejected, so every
// character is drawn uniformly. Alphabets longer than 256 are truncated.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	n := min(len(alphabet), 256)
	limit := 256 - 256%n

	result := make([]byte, 0, length)
	buf := make([]byte, length+length/4+8)
	for len(result) < length {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, alphabet[int(b)%n])
			if len(result) == length {
				break
			}
		}
	}
	return string(result)
}

// UUID returns a random UUID backed by crypto/rand
func (r *CryptoRandom) UUID() string {
	return uuid.NewString()
}
