package registry

import (
	"crypto/rand"
	"math/big"
)

// Session id alphabet: no 0/O and no 1/I, so ids survive being read
// aloud or typed from a screenshot.
const idAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const idLength = 6

func generateID() (string, error) {
	code := make([]byte, idLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = idAlphabet[n.Int64()]
	}
	return string(code), nil
}
