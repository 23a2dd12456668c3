package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hashing latency against brute-force resistance.
const bcryptCost = 12

// HashPassword returns a salted bcrypt hash of pw. The salt is
// generated per call and embedded in the output.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash. Malformed hashes
// compare as false.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
