package sessions

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single configured admin account.
type Credentials struct {
	username     string
	passwordHash []byte
}

// NewCredentials prefers a bcrypt hash. A plaintext password is hashed once
// at startup so both paths compare the same way.
func NewCredentials(username, password, passwordHash string) (Credentials, error) {
	creds := Credentials{username: username}
	switch {
	case passwordHash != "":
		creds.passwordHash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return Credentials{}, err
		}
		creds.passwordHash = hash
	}
	return creds, nil
}

// Configured is false when no admin account was set up; every login then
// fails.
func (c Credentials) Configured() bool {
	return c.username != "" && len(c.passwordHash) > 0
}

func (c Credentials) Verify(username, password string) bool {
	if !c.Configured() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
