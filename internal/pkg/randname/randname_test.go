package randname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	for _, n := range []int{1, 6, 8, 32} {
		s := Generate(n)
		assert.True(t, IsValid(s, n), s)
	}
}

func TestGenerate_Spread(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		seen[Generate(RoomCodeLen)] = struct{}{}
	}
	// 62^6 space; a handful of collisions in 1000 draws would mean a broken source
	assert.Greater(t, len(seen), 995)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("aB3xY9", 6))
	assert.False(t, IsValid("aB3xY", 6))
	assert.False(t, IsValid("aB3-Y9", 6))
	assert.False(t, IsValid("あいうえおか", 6))
}
