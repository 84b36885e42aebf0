package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	assert.Equal(t, "203.0.113.7", clientIP("203.0.113.7", "", "10.0.0.1"))
	assert.Equal(t, "203.0.113.7", clientIP("203.0.113.7, 10.0.0.2, 10.0.0.3", "", "10.0.0.1"))
	assert.Equal(t, "203.0.113.7", clientIP(" 203.0.113.7 ,10.0.0.2", "", "10.0.0.1"))
	assert.Equal(t, "198.51.100.4", clientIP("", "198.51.100.4", "10.0.0.1"))
	assert.Equal(t, "203.0.113.7", clientIP("203.0.113.7", "198.51.100.4", "10.0.0.1"))
	assert.Equal(t, "198.51.100.4", clientIP(" , ", " 198.51.100.4 ", "10.0.0.1"))
	assert.Equal(t, "10.0.0.1", clientIP("", "", "10.0.0.1"))
	assert.Equal(t, "10.0.0.1", clientIP(" , ", "", "10.0.0.1"))
}
