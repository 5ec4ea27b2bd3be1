package export

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		id         uint64
		salt       string
		hashType   HashType
		iterations uint32
		memory     uint32
		want       string
	}{
		{
			name:       "SHA256 basic test",
			id:         12345,
			salt:       "test_salt",
			hashType:   HashTypeSHA256,
			iterations: 1,
			memory:     1,
			want:       "ce3807a728757fad6c9eb6f3934c71363857bca5f8f9d7a67452543acf47ac42",
		},
		{
			name:       "SHA256 multiple iterations",
			id:         12345,
			salt:       "test_salt",
			hashType:   HashTypeSHA256,
			iterations: 3,
			memory:     1,
			want:       "2f9ed488c8e0ccce3329b47ebb9c6b7870448da2ef857c9b9b1543c29bfd1d82",
		},
		{
			name:       "Argon2id basic test",
			id:         12345,
			salt:       "test_salt",
			hashType:   HashTypeArgon2id,
			iterations: 1,
			memory:     1,
			want:       "70734f36c4da16b8322f487906015143b6fd316b76b2e2dfd627b60f819702d6",
		},
		{
			name:       "Different salt",
			id:         12345,
			salt:       "different_salt",
			hashType:   HashTypeSHA256,
			iterations: 1,
			memory:     1,
			want:       "a2a6313d0071b80edb96373d37d623f38b8fa062a596e690e2189a5242b92ce6",
		},
		{
			name:       "Different ID",
			id:         54321,
			salt:       "test_salt",
			hashType:   HashTypeSHA256,
			iterations: 1,
			memory:     1,
			want:       "c81079f1df424a4563c3a79a4557e8d0c3735f57cb110825955f85c4d8902511",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := HashID(tt.id, tt.salt, tt.hashType, tt.iterations, tt.memory)

			_, err := hex.DecodeString(got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashIDsKeepsOrder(t *testing.T) {
	t.Parallel()

	ids := []uint64{12345, 54321, 7}
	hashes := hashIDs(ids, "test_salt", HashTypeSHA256, 8, 1, 1)

	require.Len(t, hashes, len(ids))
	for i, id := range ids {
		assert.Equal(t, HashID(id, "test_salt", HashTypeSHA256, 1, 1), hashes[i])
	}

	assert.Nil(t, hashIDs(nil, "test_salt", HashTypeSHA256, 8, 1, 1))
}
