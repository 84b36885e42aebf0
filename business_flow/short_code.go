package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dynalinks/dynalinks/repository"
	"github.com/dynalinks/dynalinks/utils"
)

// ShortCodeGenerator produces unique short codes and validates custom ones
type ShortCodeGenerator interface {
	Generate(ctx context.Context) (string, error)
	ValidateCustomCode(ctx context.Context, code string) error
}

// ShortCodeGeneratorImpl implements ShortCodeGenerator backed by the link repository
type ShortCodeGeneratorImpl struct {
	linkRepo repository.DynamicLinkRepository
}

// NewShortCodeGenerator creates a new short code generator
func NewShortCodeGenerator(linkRepo repository.DynamicLinkRepository) ShortCodeGenerator {
	return &ShortCodeGeneratorImpl{linkRepo: linkRepo}
}

// Generate returns a random short code that does not collide with any existing
// link, soft-deleted ones included. It gives up after a bounded number of
// attempts so a saturated code space surfaces as an error instead of a hang.
func (g *ShortCodeGeneratorImpl) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < utils.MaxGenerationAttempts; attempt++ {
		code, err := randomCode(utils.DefaultShortCodeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}

		exists, err := g.linkRepo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", ErrCodeGenerationExhausted
}

// ValidateCustomCode checks format and availability of a caller-supplied code
func (g *ShortCodeGeneratorImpl) ValidateCustomCode(ctx context.Context, code string) error {
	if !IsValidCustomCode(code) {
		return ErrCustomCodeInvalid
	}

	exists, err := g.linkRepo.CodeExists(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to check short code uniqueness: %w", err)
	}
	if exists {
		return ErrCustomCodeTaken
	}

	return nil
}

// IsValidCustomCode reports whether code is alphanumeric and within length bounds
func IsValidCustomCode(code string) bool {
	if len(code) < utils.CustomCodeMinLength || len(code) > utils.CustomCodeMaxLength {
		return false
	}
	for _, r := range code {
		if !isAlphanumeric(r) {
			return false
		}
	}
	return true
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// randomCode generates a secure random code using crypto/rand and math/big
func randomCode(length int) (string, error) {
	alphabetSize := big.NewInt(int64(len(utils.ShortCodeAlphabet)))

	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = utils.ShortCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
