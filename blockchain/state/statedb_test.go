// Copyright 2019 The go-ledgerd Authors
// This file is part of the go-ledgerd library.
//
// The go-ledgerd library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ledgerd library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ledgerd library. If not, see <http://www.gnu.org/licenses/>.

package state

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
)

func TestCreateAccountAssignsContiguousIDs(t *testing.T) {
	sdb := NewStateDB()
	for i := 1; i <= 10; i++ {
		id := sdb.CreateAccount(fmt.Sprintf("pk-%d", i))
		assert.Equal(t, uint32(i), id)
	}
	assert.Equal(t, 10, sdb.AccountCount())
	for i := uint32(1); i <= 10; i++ {
		acc := sdb.GetAccount(i)
		require.NotNil(t, acc)
		assert.Equal(t, fmt.Sprintf("pk-%d", i), acc.PublicKey)
	}
}

func TestAddFundsCreatesAndAccumulates(t *testing.T) {
	sdb := NewStateDB()
	sdb.CreateAccount("pk-1")
	require.NoError(t, sdb.AddFunds(1, 5, "X"))
	require.NoError(t, sdb.AddFunds(1, 7, "X"))
	value, ok := sdb.GetAsset(1, "X")
	require.True(t, ok)
	assert.Equal(t, uint32(12), value)
}

func TestTransferFunds(t *testing.T) {
	sdb := NewStateDB()
	sdb.CreateAccount("pk-1")
	sdb.CreateAccount("pk-2")
	require.NoError(t, sdb.AddFunds(1, 5, "X"))

	require.NoError(t, sdb.TransferFunds(1, 2, 3, "X"))
	from, _ := sdb.GetAsset(1, "X")
	to, _ := sdb.GetAsset(2, "X")
	assert.Equal(t, uint32(2), from)
	assert.Equal(t, uint32(3), to)
}

func TestTransferFundsPreconditions(t *testing.T) {
	sdb := NewStateDB()
	sdb.CreateAccount("pk-1")
	sdb.CreateAccount("pk-2")
	require.NoError(t, sdb.AddFunds(1, 5, "X"))

	err := sdb.TransferFunds(1, 2, 10, "X")
	assert.Equal(t, ErrInsufficientFunds, errors.Cause(err))

	err = sdb.TransferFunds(2, 1, 1, "X")
	assert.Equal(t, ErrNoSuchAsset, errors.Cause(err))

	err = sdb.TransferFunds(1, 2, 1, "Y")
	assert.Equal(t, ErrNoSuchAsset, errors.Cause(err))
}

func TestApplyCommand(t *testing.T) {
	sdb := NewStateDB()
	cmds := []types.Command{
		&types.CreateAccount{PublicKey: "pk-1"},
		&types.CreateAccount{PublicKey: "pk-2"},
		&types.AddFunds{AccountID: 1, Value: 9, AssetID: "X"},
		&types.TransferFunds{AccountFromID: 1, AccountToID: 2, Value: 4, AssetID: "X"},
	}
	for _, cmd := range cmds {
		require.NoError(t, sdb.ApplyCommand(cmd))
	}
	value, _ := sdb.GetAsset(2, "X")
	assert.Equal(t, uint32(4), value)

	// Later commands see earlier mutations of the same batch.
	err := sdb.ApplyCommand(&types.TransferFunds{AccountFromID: 2, AccountToID: 1, Value: 4, AssetID: "X"})
	require.NoError(t, err)
}

func TestCopyIsolation(t *testing.T) {
	sdb := NewStateDB()
	sdb.CreateAccount("pk-1")
	require.NoError(t, sdb.AddFunds(1, 5, "X"))

	cpy := sdb.Copy()
	cpy.CreateAccount("pk-2")
	require.NoError(t, cpy.AddFunds(1, 5, "X"))

	assert.Equal(t, 1, sdb.AccountCount())
	value, _ := sdb.GetAsset(1, "X")
	assert.Equal(t, uint32(5), value)
	value, _ = cpy.GetAsset(1, "X")
	assert.Equal(t, uint32(10), value)
}
