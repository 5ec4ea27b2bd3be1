package export

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/crypto/argon2"
)

// HashType represents the different hashing algorithms available.
type HashType string

const (
	// HashTypeArgon2id uses the Argon2id algorithm for hashing.
	HashTypeArgon2id HashType = "argon2id"
	// HashTypeSHA256 uses the SHA256 algorithm for hashing.
	HashTypeSHA256 HashType = "sha256"
)

// IsValid reports whether the hash type is known.
func (h HashType) IsValid() bool {
	return h == HashTypeArgon2id || h == HashTypeSHA256
}

// HashID converts a member ID to a hash using the specified algorithm with the provided salt.
func HashID(id uint64, salt string, hashType HashType, iterations uint32, memory uint32) string {
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, id)

	var hash []byte

	switch hashType {
	case HashTypeArgon2id:
		hash = argon2.IDKey(idBytes, []byte(salt), iterations, memory*1024, 1, 32)
	case HashTypeSHA256:
		// Iterative SHA256 hashing with salt
		hash = []byte(salt)

		h := sha256.New()
		for range iterations {
			h.Reset()
			h.Write(idBytes)
			h.Write(hash)
			hash = h.Sum(nil)
		}
	}

	return hex.EncodeToString(hash)
}

// hashIDs hashes member IDs on at most concurrency goroutines, keeping order.
func hashIDs(ids []uint64, salt string, hashType HashType, concurrency int, iterations, memory uint32) []string {
	if len(ids) == 0 {
		return nil
	}

	hashes := make([]string, len(ids))

	p := pool.New().WithMaxGoroutines(min(max(concurrency, 1), len(ids)))
	for i, id := range ids {
		p.Go(func() {
			hashes[i] = HashID(id, salt, hashType, iterations, memory)
		})
	}
	p.Wait()

	return hashes
}
