package hash

import (
	"crypto/sha256"

	"github.com/nspcc-dev/near-go/pkg/util"
)

// Sha256 hashes the incoming byte slice
// using the sha256 algorithm.
func Sha256(data []byte) util.CryptoHash {
	return sha256.Sum256(data)
}
