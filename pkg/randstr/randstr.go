package randstr

import (
	"crypto/rand"
	"math/big"
)

const Alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Generator struct {
	letters []byte
}

func New(letters []byte) *Generator {
	return &Generator{letters: letters}
}

func (g Generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	limit := big.NewInt(int64(len(g.letters)))
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		b[i] = g.letters[n.Int64()]
	}

	return string(b)
}
