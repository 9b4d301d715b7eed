package auth

// KeyStore manages HS256 signing keys by kid, allowing key rotation without
// invalidating tokens signed with the previous key.
type KeyStore struct {
	hs256Keys map[string][]byte // kid -> secret
	activeKid string
}

// NewKeyStore creates a new KeyStore
func NewKeyStore() *KeyStore {
	return &KeyStore{
		hs256Keys: make(map[string][]byte),
	}
}

// LoadHS256Key adds an HS256 secret for a kid. The last loaded key becomes the
// active signing key.
func (ks *KeyStore) LoadHS256Key(kid string, secret []byte) {
	ks.hs256Keys[kid] = secret
	ks.activeKid = kid
}

// GetHS256Key retrieves an HS256 secret by kid
func (ks *KeyStore) GetHS256Key(kid string) ([]byte, bool) {
	secret, ok := ks.hs256Keys[kid]
	return secret, ok
}

// ActiveKey returns the kid and secret used for signing new tokens
func (ks *KeyStore) ActiveKey() (string, []byte, bool) {
	secret, ok := ks.hs256Keys[ks.activeKid]
	return ks.activeKid, secret, ok
}
