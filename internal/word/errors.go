package word

import "errors"

var (
	// ErrDuplicateWord is returned when the word is already registered.
	ErrDuplicateWord = errors.New("word: word already registered")
	// ErrUnknownWord is returned when removing a word that is not registered.
	ErrUnknownWord = errors.New("word: word not registered")
)
