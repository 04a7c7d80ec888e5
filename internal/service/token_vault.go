package service

import (
	"github.com/AwwCookies/Chatterbox-sub002/internal/util"
)

// tokenVault seals and opens OAuth tokens for storage. With no key
// configured it passes values through unchanged; config warns about that in
// production.
type tokenVault struct {
	key string
}

func newTokenVault(hexKey string) tokenVault {
	return tokenVault{key: hexKey}
}

func (v tokenVault) Seal(plaintext string) (string, error) {
	if v.key == "" || plaintext == "" {
		return plaintext, nil
	}
	return util.Encrypt(v.key, plaintext)
}

func (v tokenVault) Open(stored string) (string, error) {
	if v.key == "" || stored == "" {
		return stored, nil
	}
	return util.Decrypt(v.key, stored)
}
