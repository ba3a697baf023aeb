package persistence

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

var ErrDecrypt = errors.New("error decrypt blob")

// Cipher seals blobs with fernet tokens before they reach the blob store.
type Cipher struct {
	keys []*fernet.Key
}

// NewCipher accepts a base64 encoded 32 byte key. An empty key disables
// encryption and returns nil.
func NewCipher(encodedKey string) (*Cipher, error) {
	if encodedKey == "" {
		return nil, nil
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode fernet key: %w", err)
	}
	return &Cipher{keys: []*fernet.Key{key}}, nil
}

func (c *Cipher) Seal(plain []byte) ([]byte, error) {
	if c == nil {
		return plain, nil
	}
	return fernet.EncryptAndSign(plain, c.keys[0])
}

func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	if c == nil {
		return sealed, nil
	}
	// negative ttl: tokens never expire
	plain := fernet.VerifyAndDecrypt(sealed, -1, c.keys)
	if plain == nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
