package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest bcrypt cost accepted for stored hashes.
const MinCost = 10

func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, MinCost)
}

func HashPasswordCost(password string, cost int) (string, error) {
	if cost < MinCost {
		cost = MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// VerifyPassword reports whether password matches hash. Malformed hashes
// count as a mismatch.
func VerifyPassword(password, hash string) bool {
	return CheckPassword(hash, password) == nil
}
