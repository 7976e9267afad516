// Package shortid generates and validates the public identifiers that map
// to stored URLs.
package shortid

import (
	"errors"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Length of generated identifiers. Eight characters over a 64-symbol
// alphabet gives 64^8 ≈ 2.8e14 possible ids; collisions are probabilistic
// and treated as exceedingly unlikely rather than actively retried.
const Length = 8

// MaxAliasLength bounds caller-supplied aliases.
const MaxAliasLength = 50

var (
	ErrEmptyAlias   = errors.New("alias cannot be empty")
	ErrAliasTooLong = errors.New("alias exceeds maximum length")
	ErrInvalidChars = errors.New("alias contains invalid characters")
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Generate produces a random, URL-safe short identifier. The nanoid default
// alphabet is exactly the allowed id charset [A-Za-z0-9_-].
func Generate() (string, error) {
	return gonanoid.New(Length)
}

// ValidateAlias checks a caller-supplied alias: non-empty, at most
// MaxAliasLength characters, charset [A-Za-z0-9_-]. Returns the alias
// unchanged when valid.
func ValidateAlias(input string) (string, error) {
	if input == "" {
		return "", ErrEmptyAlias
	}
	if len(input) > MaxAliasLength {
		return "", ErrAliasTooLong
	}
	if !aliasPattern.MatchString(input) {
		return "", ErrInvalidChars
	}
	return input, nil
}
