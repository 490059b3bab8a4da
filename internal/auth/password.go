package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password. Cost comes from
// AUTH_BCRYPT_COST; non-positive values fall back to the bcrypt
// default so a missing setting never weakens hashing.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a plaintext password against a stored hash.
// The hash encodes its own cost, so rotated cost settings keep old
// credentials verifiable.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
