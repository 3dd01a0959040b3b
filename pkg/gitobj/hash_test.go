package gitobj_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

func TestZeroHash(t *testing.T) {
	hash := gitobj.ZeroHash()

	assert.Equal(t, gitobj.Hash{}, hash)
	assert.True(t, hash.IsZero())
}

func TestNewHash(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected gitobj.Hash
	}{
		{
			name:  "full lowercase hex",
			input: "0123456789abcdef0123456789abcdef01234567",
			expected: gitobj.Hash{
				0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef,
				0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef,
				0x01, 0x23, 0x45, 0x67,
			},
		},
		{
			name:  "full uppercase hex",
			input: "0123456789ABCDEF0123456789ABCDEF01234567",
			expected: gitobj.Hash{
				0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef,
				0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef,
				0x01, 0x23, 0x45, 0x67,
			},
		},
		{
			name:     "all zeros",
			input:    "0000000000000000000000000000000000000000",
			expected: gitobj.Hash{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gitobj.NewHash(tt.input))
		})
	}
}

func TestHashStringRoundTrip(t *testing.T) {
	const hex = "89abcdef0123456789abcdef0123456789abcdef"

	hash := gitobj.NewHash(hex)

	assert.Equal(t, hex, hash.String())
}

func TestParseHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "0123456789abcdef0123456789abcdef01234567"},
		{name: "too short", input: "0123456789abcdef", wantErr: true},
		{name: "too long", input: "0123456789abcdef0123456789abcdef0123456789", wantErr: true},
		{name: "non-hex character", input: "0123456789abcdef0123456789abcdef0123456g", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := gitobj.ParseHash(tt.input)
			if tt.wantErr {
				var invalidErr *gitobj.InvalidHashError

				require.ErrorAs(t, err, &invalidErr)
				assert.Equal(t, tt.input, invalidErr.Input)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input, hash.String())
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, gitobj.Hash{}.IsZero())
	assert.False(t, gitobj.NewHash("0000000000000000000000000000000000000001").IsZero())
}
