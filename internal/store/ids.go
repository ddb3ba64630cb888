package store

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idSize     = 21
)

// newID returns a new random entity ID.
func newID() string {
	return gonanoid.MustGenerate(idAlphabet, idSize)
}
