package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHash_NeverStoresPlaintext(t *testing.T) {
	hash, err := GetHash("correct horse battery staple")
	require.NoError(t, err)

	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)
}

func TestCompareHash(t *testing.T) {
	hash, err := GetHash("secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  bool
	}{
		{
			name:     "matching password",
			hash:     hash,
			password: "secret123",
			wantErr:  false,
		},
		{
			name:     "wrong password",
			hash:     hash,
			password: "secret124",
			wantErr:  true,
		},
		{
			name:     "malformed hash fails closed",
			hash:     "not-a-bcrypt-digest",
			password: "secret123",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetHash_DistinctSalts(t *testing.T) {
	first, err := GetHash("same-password")
	require.NoError(t, err)
	second, err := GetHash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
