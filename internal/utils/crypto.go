// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateAPIKey returns a new programmatic-access key of the form
// "rs_<keyID>_<secret>". Only the key ID and the bcrypt hash of the secret
// are persisted; the plaintext is shown to the shop owner once.
func GenerateAPIKey() (key, keyID string, err error) {
	keyID, err = GenerateRandomString(12)
	if err != nil {
		return "", "", err
	}
	secret, err := GenerateRandomString(32)
	if err != nil {
		return "", "", err
	}
	return "rs_" + keyID + "_" + secret, keyID, nil
}

// SplitAPIKey breaks a presented key back into its key ID and secret.
func SplitAPIKey(key string) (keyID, secret string, ok bool) {
	if !strings.HasPrefix(key, "rs_") {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(key, "rs_"), "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}
