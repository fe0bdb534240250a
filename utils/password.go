package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored in the users table.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a login attempt against a stored hash. A nil
// return means the password matches.
func CheckPassword(plain, hashed string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
