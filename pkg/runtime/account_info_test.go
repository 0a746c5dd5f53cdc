package runtime

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/sol-vault/pkg/solana"
	"github.com/code-payments/sol-vault/pkg/solana/system"
	"github.com/code-payments/sol-vault/pkg/testutil"
)

func TestAccountInfo_WithMutableData(t *testing.T) {
	owner := testutil.NewRandomKey(t)
	info := NewAccountInfo(testutil.NewRandomKey(t), false, true, 100, owner, []byte{1, 2, 3})

	require.NoError(t, info.WithMutableData(func(data []byte) error {
		data[0] = 9
		return nil
	}))
	assert.Equal(t, []byte{9, 2, 3}, info.Data())

	expectedErr := errors.New("failed")
	err := info.WithMutableData(func(data []byte) error {
		data[1] = 9
		return expectedErr
	})
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, []byte{9, 2, 3}, info.Data())

	err = info.WithMutableData(func(data []byte) error {
		return info.WithMutableData(func(data []byte) error {
			return nil
		})
	})
	assert.Equal(t, solana.InstructionErrorAccountBorrowFailed, err)

	// The borrow is released once the outer call returns
	require.NoError(t, info.WithMutableData(func(data []byte) error { return nil }))
}

func TestAccountInfo_Accessors(t *testing.T) {
	key := testutil.NewRandomKey(t)
	owner := testutil.NewRandomKey(t)

	info := NewAccountInfo(key, true, false, 42, owner, nil)
	assert.EqualValues(t, 42, info.Lamports())
	assert.True(t, info.IsOwnedBy(owner))
	assert.False(t, info.IsSystemAccount())
	assert.Equal(t, 0, info.DataLen())

	returned := info.Owner()
	returned[0] ^= 0xff
	assert.True(t, info.IsOwnedBy(owner))

	info.SetLamports(7)
	assert.EqualValues(t, 7, info.Lamports())

	systemInfo := NewAccountInfo(key, false, false, 0, system.SystemAccount, nil)
	assert.True(t, systemInfo.IsSystemAccount())
	assert.Contains(t, systemInfo.String(), "data_len=0")
}

func TestVerifyAccountChanges(t *testing.T) {
	programID := testutil.NewRandomKey(t)
	other := testutil.NewRandomKey(t)

	for _, tc := range []struct {
		name     string
		mutate   func(owned, external, readonly *AccountInfo)
		expected error
	}{
		{
			name: "owner debits owned account",
			mutate: func(owned, external, readonly *AccountInfo) {
				owned.state.lamports -= 10
				external.state.lamports += 10
			},
		},
		{
			name: "debit external account",
			mutate: func(owned, external, readonly *AccountInfo) {
				external.state.lamports -= 10
				owned.state.lamports += 10
			},
			expected: solana.InstructionErrorExternalAccountLamportSpend,
		},
		{
			name: "credit readonly account",
			mutate: func(owned, external, readonly *AccountInfo) {
				owned.state.lamports -= 10
				readonly.state.lamports += 10
			},
			expected: solana.InstructionErrorReadonlyLamportChange,
		},
		{
			name: "mint lamports",
			mutate: func(owned, external, readonly *AccountInfo) {
				external.state.lamports += 10
			},
			expected: solana.InstructionErrorUnbalancedInstruction,
		},
		{
			name: "modify external data",
			mutate: func(owned, external, readonly *AccountInfo) {
				external.state.data[0] = 1
			},
			expected: solana.InstructionErrorExternalAccountDataModified,
		},
		{
			name: "modify readonly data",
			mutate: func(owned, external, readonly *AccountInfo) {
				readonly.state.data[0] = 1
			},
			expected: solana.InstructionErrorReadonlyDataModified,
		},
		{
			name: "resize external data",
			mutate: func(owned, external, readonly *AccountInfo) {
				external.state.data = make([]byte, 8)
			},
			expected: solana.InstructionErrorAccountDataSizeChanged,
		},
		{
			name: "reassign external account",
			mutate: func(owned, external, readonly *AccountInfo) {
				external.state.owner = programID
			},
			expected: solana.InstructionErrorModifiedProgramID,
		},
		{
			name: "reassign owned account with data",
			mutate: func(owned, external, readonly *AccountInfo) {
				owned.state.data[0] = 1
				owned.state.owner = other
			},
			expected: solana.InstructionErrorModifiedProgramID,
		},
		{
			name: "reassign owned zeroed account",
			mutate: func(owned, external, readonly *AccountInfo) {
				owned.state.owner = other
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			owned := NewAccountInfo(testutil.NewRandomKey(t), false, true, 100, programID, make([]byte, 4))
			external := NewAccountInfo(testutil.NewRandomKey(t), false, true, 100, other, make([]byte, 4))
			readonly := NewAccountInfo(testutil.NewRandomKey(t), false, false, 100, programID, make([]byte, 4))
			accounts := []*AccountInfo{owned, external, readonly}

			frame := newInvocation(logrus.NewEntry(logrus.StandardLogger()), system.DefaultRent(), nil, 1, programID, accounts)
			tc.mutate(owned, external, readonly)

			assert.Equal(t, tc.expected, verifyAccountChanges(programID, frame.pre, accounts))
		})
	}
}
