// Package password hashes and verifies account secrets.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher produces and checks opaque digests of secrets.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(digest, secret string) bool
}

// Bcrypt implements Hasher with golang.org/x/crypto/bcrypt. Each digest carries its own salt.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher. Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (b *Bcrypt) Verify(digest, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
