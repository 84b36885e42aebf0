package businessflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/repository"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLinkRepo implements repository.DynamicLinkRepository backed by a map
type fakeLinkRepo struct {
	links map[string]*models.DynamicLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*models.DynamicLink)}
}

func (f *fakeLinkRepo) ByID(ctx context.Context, id uint) (*models.DynamicLink, error) {
	for _, link := range f.links {
		if link.ID == id {
			return link, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkRepo) ByFilter(ctx context.Context, filter models.DynamicLinkFilter, orderBy string, limit, offset int) ([]*models.DynamicLink, error) {
	var out []*models.DynamicLink
	for _, link := range f.links {
		out = append(out, link)
	}
	return out, nil
}

func (f *fakeLinkRepo) Save(ctx context.Context, entity *models.DynamicLink) error {
	f.links[entity.ShortCode] = entity
	return nil
}

func (f *fakeLinkRepo) SaveBatch(ctx context.Context, entities []*models.DynamicLink) error {
	for _, e := range entities {
		f.links[e.ShortCode] = e
	}
	return nil
}

func (f *fakeLinkRepo) Count(ctx context.Context, filter models.DynamicLinkFilter) (int64, error) {
	return int64(len(f.links)), nil
}

func (f *fakeLinkRepo) Exists(ctx context.Context, filter models.DynamicLinkFilter) (bool, error) {
	if filter.ShortCode != nil {
		_, ok := f.links[*filter.ShortCode]
		return ok, nil
	}
	return len(f.links) > 0, nil
}

func (f *fakeLinkRepo) ByShortCode(ctx context.Context, shortCode string) (*models.DynamicLink, error) {
	return f.links[shortCode], nil
}

func (f *fakeLinkRepo) ActiveByShortCode(ctx context.Context, shortCode string) (*models.DynamicLink, error) {
	link := f.links[shortCode]
	if link == nil || !utils.IsTrue(link.IsActive) {
		return nil, nil
	}
	return link, nil
}

func (f *fakeLinkRepo) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	_, ok := f.links[shortCode]
	return ok, nil
}

func (f *fakeLinkRepo) UpdateFields(ctx context.Context, shortCode string, fields map[string]any) (*models.DynamicLink, error) {
	return f.links[shortCode], nil
}

func (f *fakeLinkRepo) SoftDelete(ctx context.Context, shortCode string) (*uint, error) {
	link := f.links[shortCode]
	if link == nil {
		return nil, nil
	}
	link.IsActive = utils.ToPtr(false)
	return &link.ID, nil
}

func (f *fakeLinkRepo) ListLinks(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.DynamicLink, error) {
	var out []*models.DynamicLink
	for _, link := range f.links {
		if activeOnly && !utils.IsTrue(link.IsActive) {
			continue
		}
		out = append(out, link)
	}
	return out, nil
}

var _ repository.DynamicLinkRepository = (*fakeLinkRepo)(nil)

func TestShortCodeGenerate(t *testing.T) {
	ctx := context.Background()
	gen := NewShortCodeGenerator(newFakeLinkRepo())

	t.Run("GeneratesDefaultLength", func(t *testing.T) {
		code, err := gen.Generate(ctx)
		require.NoError(t, err)
		assert.Len(t, code, utils.DefaultShortCodeLength)
	})

	t.Run("UsesAlphabetOnly", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			code, err := gen.Generate(ctx)
			require.NoError(t, err)
			for _, r := range code {
				assert.True(t, strings.ContainsRune(utils.ShortCodeAlphabet, r),
					"unexpected character %q in code %q", r, code)
			}
		}
	})

	t.Run("SkipsOccupiedCodes", func(t *testing.T) {
		repo := newFakeLinkRepo()
		g := NewShortCodeGenerator(repo)

		code, err := g.Generate(ctx)
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, &models.DynamicLink{
			ShortCode:   code,
			FallbackURL: "https://example.com",
			IsActive:    utils.ToPtr(true),
			CreatedAt:   time.Now().UTC(),
		}))

		next, err := g.Generate(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, code, next)
	})
}

// exhaustedRepo reports every code as taken
type exhaustedRepo struct {
	*fakeLinkRepo
}

func (e *exhaustedRepo) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	return true, nil
}

func TestShortCodeGenerateExhausted(t *testing.T) {
	gen := NewShortCodeGenerator(&exhaustedRepo{newFakeLinkRepo()})

	_, err := gen.Generate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCodeGenerationExhausted)
}

func TestValidateCustomCode(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLinkRepo()
	gen := NewShortCodeGenerator(repo)

	t.Run("AcceptsValidCode", func(t *testing.T) {
		assert.NoError(t, gen.ValidateCustomCode(ctx, "promo24"))
	})

	t.Run("RejectsTooShort", func(t *testing.T) {
		err := gen.ValidateCustomCode(ctx, "ab")
		assert.ErrorIs(t, err, ErrCustomCodeInvalid)
	})

	t.Run("RejectsTooLong", func(t *testing.T) {
		err := gen.ValidateCustomCode(ctx, "abcdefghijk")
		assert.ErrorIs(t, err, ErrCustomCodeInvalid)
	})

	t.Run("RejectsNonAlphanumeric", func(t *testing.T) {
		err := gen.ValidateCustomCode(ctx, "pro-mo")
		assert.ErrorIs(t, err, ErrCustomCodeInvalid)

		err = gen.ValidateCustomCode(ctx, "pro mo")
		assert.ErrorIs(t, err, ErrCustomCodeInvalid)
	})

	t.Run("RejectsTakenCode", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, &models.DynamicLink{
			ShortCode:   "taken1",
			FallbackURL: "https://example.com",
			IsActive:    utils.ToPtr(true),
		}))

		err := gen.ValidateCustomCode(ctx, "taken1")
		assert.ErrorIs(t, err, ErrCustomCodeTaken)
	})

	t.Run("BoundaryLengthsAccepted", func(t *testing.T) {
		assert.NoError(t, gen.ValidateCustomCode(ctx, "abc"))
		assert.NoError(t, gen.ValidateCustomCode(ctx, "abcdefghij"))
	})
}

func TestIsValidCustomCode(t *testing.T) {
	assert.True(t, IsValidCustomCode("abc"))
	assert.True(t, IsValidCustomCode("ABC123"))
	assert.False(t, IsValidCustomCode(""))
	assert.False(t, IsValidCustomCode("ab"))
	assert.False(t, IsValidCustomCode("with_underscore"))
	assert.False(t, IsValidCustomCode("ünïcode"))
}
