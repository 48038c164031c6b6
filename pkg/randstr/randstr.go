package randstr

import (
	"crypto/rand"
	"math/big"
)

type Generator struct {
	letters []byte
	max     *big.Int
}

func New(letters []byte) *Generator {
	return &Generator{
		letters: letters,
		max:     big.NewInt(int64(len(letters))),
	}
}

// GenerateRandomString returns length letters drawn uniformly from the
// generator alphabet using crypto/rand.
func (g *Generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, g.max)
		if err != nil {
			panic("randstr: crypto/rand failed: " + err.Error())
		}
		b[i] = g.letters[n.Int64()]
	}

	return string(b)
}
