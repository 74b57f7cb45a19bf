// Package password wraps bcrypt hashing and verification of user passwords.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GetHash returns the bcrypt hash of a password for storage. The salt is
// embedded in the output; the cost is bcrypt.DefaultCost.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash checks a password against a stored bcrypt hash. A malformed
// hash fails the same way as a wrong password.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
