package randstr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomString(t *testing.T) {
	letters := "ABC123"
	g := New([]byte(letters))

	for i := 0; i < 100; i++ {
		s := g.GenerateRandomString(8)
		assert.Len(t, s, 8)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(letters, r), "unexpected rune %q", r)
		}
	}
}
