package utils

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestHashIPAddress(t *testing.T) {
	hash := HashIPAddress("203.0.113.7")

	assert.Len(t, hash, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", hash)

	// Deterministic for the same address, distinct across addresses
	assert.Equal(t, hash, HashIPAddress("203.0.113.7"))
	assert.NotEqual(t, hash, HashIPAddress("203.0.113.8"))

	// Never stores the raw address
	assert.NotContains(t, hash, "203")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("", 5))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	// "héllo" is 6 bytes; cutting at 2 would split the é
	assert.Equal(t, "h", Truncate("héllo", 2))
	assert.Equal(t, "hé", Truncate("héllo", 3))
	assert.True(t, utf8.ValidString(Truncate("日本語のユーザーエージェント", 10)))
	assert.Equal(t, "", Truncate("日本語", 2))
}

func TestIsTrue(t *testing.T) {
	assert.True(t, IsTrue(ToPtr(true)))
	assert.False(t, IsTrue(ToPtr(false)))
	assert.False(t, IsTrue(nil))
}

func TestIsExpired(t *testing.T) {
	assert.True(t, IsExpired(time.Now().UTC().Add(-time.Second)))
	assert.False(t, IsExpired(time.Now().UTC().Add(time.Hour)))

	assert.False(t, IsExpiredPtr(nil))
	assert.True(t, IsExpiredPtr(ToPtr(time.Now().UTC().Add(-time.Second))))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "link:abc1234", LinkCacheKey("abc1234"))
	assert.Equal(t, "clicks:abc1234", ClickCounterKey("abc1234"))
}
