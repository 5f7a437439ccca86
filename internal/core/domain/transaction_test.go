package domain_test

import (
	"strings"
	"testing"

	"eth_block_explorer/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "Lowercase", input: "0x" + strings.Repeat("ab", 32), want: "0x" + strings.Repeat("ab", 32)},
		{name: "Mixed case is normalized", input: "0x" + strings.Repeat("AB", 32), want: "0x" + strings.Repeat("ab", 32)},
		{name: "Too short", input: "0xabc", wantErr: true},
		{name: "Missing prefix", input: strings.Repeat("ab", 32), wantErr: true},
		{name: "Not hex", input: "0x" + strings.Repeat("zz", 32), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := domain.NewTransactionHash(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTransactionHashFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hash.String())
			assert.False(t, hash.IsZero())
		})
	}

	assert.True(t, domain.TransactionHash{}.IsZero())
}

func TestTransaction_IsContractCreation(t *testing.T) {
	to, err := domain.NewAddress("0xdac17f958d2ee523a2206206994597c13d831ec7")
	require.NoError(t, err)

	assert.True(t, domain.Transaction{}.IsContractCreation())
	assert.False(t, domain.Transaction{To: to}.IsContractCreation())
}

func TestReceipt_Succeeded(t *testing.T) {
	assert.True(t, domain.Receipt{Status: domain.ReceiptStatusSuccessful}.Succeeded())
	assert.False(t, domain.Receipt{Status: domain.ReceiptStatusFailed}.Succeeded())
}
