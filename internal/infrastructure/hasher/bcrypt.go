package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
)

const DefaultCost = 10

// Bcrypt hashes passwords with a fixed work factor.
type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrHashing, err)
	}
	return string(hash), nil
}
