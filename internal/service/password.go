package service

import "golang.org/x/crypto/bcrypt"

// hashPassword generates a bcrypt hash of the password. bcrypt embeds its
// own salt, so equal passwords produce different hashes.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password with a stored hash.
// bcrypt extracts the salt from the hash and compares in constant time.
func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
