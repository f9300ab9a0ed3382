package encoding

import (
	"encoding/base32"
	"strings"
)

const crockfordBase32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

//nolint:gochecknoglobals
var (
	crockford = base32.NewEncoding(crockfordBase32Alphabet).WithPadding(base32.NoPadding)

	// Crockford decoding folds O to 0 and I, L to 1.
	crockfordFolds = strings.NewReplacer(" ", "", "o", "0", "i", "1", "l", "1")
)

// EncodeCrockfordB32LC encodes input with Crockford's base32 alphabet, without padding,
// and returns it in lowercase. Digests of pipeline artifacts are rendered this way.
func EncodeCrockfordB32LC(input []byte) string {
	return strings.ToLower(crockford.EncodeToString(input))
}

// NormalizeCrockfordB32LC folds a hand-typed Crockford string into its canonical
// lowercase form.
func NormalizeCrockfordB32LC(input string) string {
	return crockfordFolds.Replace(strings.ToLower(input))
}
