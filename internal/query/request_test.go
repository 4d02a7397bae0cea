package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr string
	}{
		{"dotted", "0.0.123456", 123456, ""},
		{"bare number", "98", 98, ""},
		{"surrounding whitespace", "  0.0.800 ", 800, ""},
		{"empty", "", 0, "Missing accountId parameter"},
		{"blank", "   ", 0, "Missing accountId parameter"},
		{"letters", "0.0.abc", 0, "Invalid accountId: 0.0.abc"},
		{"two segments", "0.123", 0, "Invalid accountId: 0.123"},
		{"negative", "0.0.-5", 0, "Invalid accountId: 0.0.-5"},
		{"zero account", "0.0.0", 0, ""},
		{"non-zero realm", "0.5.42", 0, "Invalid accountId: 0.5.42"},
		{"non-zero shard and realm", "1.2.3", 0, "Invalid accountId: 1.2.3"},
		{"non-zero shard", "3.0.42", 0, "Invalid accountId: 3.0.42"},
		{"leading zeros", "00.0.0123", 0, "Invalid accountId: 00.0.0123"},
		{"leading zero account", "0.0.0123", 0, "Invalid accountId: 0.0.0123"},
		{"bare leading zero", "0123", 0, "Invalid accountId: 0123"},
		{"plus sign", "0.0.+5", 0, "Invalid accountId: 0.0.+5"},
		{"overflow", "0.0.9223372036854775808", 0, "Invalid accountId: 0.0.9223372036854775808"},
		{"four segments", "0.0.0.1", 0, "Invalid accountId: 0.0.0.1"},
		{"evm address", "0x00000000000000000000000000000000000004d2", 0, "Invalid accountId: 0x00000000000000000000000000000000000004d2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccountID(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())

				var reqErr *RequestError
				assert.True(t, errors.As(err, &reqErr), "want *RequestError")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("blocks")
	require.Error(t, err)
	assert.Equal(t, "Unsupported queryType: blocks", err.Error())
}

func TestFormatAccountID(t *testing.T) {
	assert.Equal(t, "0.0.123456", FormatAccountID(123456))
}
