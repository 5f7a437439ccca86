package utils_test

import (
	"testing"

	"eth_block_explorer/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToUint64(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{name: "Prefixed", input: "0x1a", want: 26},
		{name: "Upper case", input: "0X1A", want: 26},
		{name: "Zero", input: "0x0", want: 0},
		{name: "Unprefixed", input: "ff", want: 255},
		{name: "Empty", input: "", wantErr: true},
		{name: "Bare prefix", input: "0x", wantErr: true},
		{name: "Not hex", input: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := utils.HexToUint64(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexToInt64(t *testing.T) {
	got, err := utils.HexToInt64("0x1312d00")
	require.NoError(t, err)
	assert.Equal(t, int64(20000000), got)

	_, err = utils.HexToInt64("0xffffffffffffffffff")
	assert.Error(t, err)
}

func TestHexToUint64OrZero(t *testing.T) {
	got, err := utils.HexToUint64OrZero("")
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = utils.HexToUint64OrZero("0x2")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got)
}
