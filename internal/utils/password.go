package utils

import "golang.org/x/crypto/bcrypt"

// OIDCPasswordPlaceholder marks accounts that can only sign in through OIDC.
// It is never a valid bcrypt hash, so password login always fails for them.
const OIDCPasswordPlaceholder = "oidc_login_placeholder"

func GeneratePassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
