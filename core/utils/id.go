package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short URL-safe identifier.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 7)
	if err != nil {
		return ""
	}
	return id
}

// GenerateInvitationToken returns a token long enough to be unguessable; used
// for join-by-link invitation URLs.
func GenerateInvitationToken() string {
	token, err := gonanoid.Generate(idAlphabet, 21)
	if err != nil {
		return ""
	}
	return token
}
