// Package password wraps bcrypt hashing for stored credentials.
package password

import "golang.org/x/crypto/bcrypt"

// dummyHash is a valid bcrypt hash compared against when no stored hash
// exists, so a lookup miss costs the same as a wrong password and the
// caller cannot tell the two apart.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hash derives a bcrypt hash from a plaintext password.
func Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether candidate matches the stored hash. An empty
// stored hash always verifies false, never errors.
func Verify(storedHash, candidate string) bool {
	if storedHash == "" {
		storedHash = dummyHash
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}
