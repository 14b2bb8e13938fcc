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

// Package state holds the account and asset state mutated by committed
// blocks. A StateDB is not safe for concurrent use; the owning Storage
// serializes access.
package state

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
)

var (
	// ErrNoSuchAccount flags a reference to an unknown account. The commands
	// executed here do not check that accounts exist, so none returns it.
	ErrNoSuchAccount = errors.New("state: no such account")
	// ErrNoSuchAsset is returned when a transfer sources a missing asset key.
	ErrNoSuchAsset = errors.New("state: no such asset")
	// ErrInsufficientFunds is returned when a transfer exceeds the source value.
	ErrInsufficientFunds = errors.New("state: insufficient funds")
	// ErrValueOverflow is returned when a credit would overflow an asset.
	ErrValueOverflow = errors.New("state: asset value overflow")
	// ErrUnknownCommand is returned for a command the state cannot execute.
	ErrUnknownCommand = errors.New("state: unknown command")
)

// Account is a ledger participant, identified by its insertion-ordered id.
type Account struct {
	PublicKey string
}

// Asset is a valued holding keyed by (account, asset id).
type Asset struct {
	Value uint32
}

// AssetKey addresses one asset of one account.
type AssetKey struct {
	AccountID uint32
	AssetID   string
}

// StateDB is the in-memory account and asset state. Accounts are append-only;
// ids are assigned at CreateAccount execution time and never reused.
type StateDB struct {
	accounts map[uint32]*Account
	assets   map[AssetKey]*Asset
}

// NewStateDB returns an empty state.
func NewStateDB() *StateDB {
	return &StateDB{
		accounts: make(map[uint32]*Account),
		assets:   make(map[AssetKey]*Asset),
	}
}

// Copy returns a deep copy. Block application dry-runs against a copy and
// swaps it in only when every command succeeded.
func (s *StateDB) Copy() *StateDB {
	cpy := &StateDB{
		accounts: make(map[uint32]*Account, len(s.accounts)),
		assets:   make(map[AssetKey]*Asset, len(s.assets)),
	}
	for id, acc := range s.accounts {
		a := *acc
		cpy.accounts[id] = &a
	}
	for key, asset := range s.assets {
		a := *asset
		cpy.assets[key] = &a
	}
	return cpy
}

// CreateAccount appends a new account and returns its id.
func (s *StateDB) CreateAccount(publicKey string) uint32 {
	id := uint32(len(s.accounts)) + 1
	s.accounts[id] = &Account{PublicKey: publicKey}
	return id
}

// AddFunds credits an asset, creating it when absent.
func (s *StateDB) AddFunds(accountID uint32, value uint32, assetID string) error {
	key := AssetKey{AccountID: accountID, AssetID: assetID}
	asset, ok := s.assets[key]
	if !ok {
		s.assets[key] = &Asset{Value: value}
		return nil
	}
	if uint64(asset.Value)+uint64(value) > math.MaxUint32 {
		return errors.Wrapf(ErrValueOverflow, "account %d asset %s", accountID, assetID)
	}
	asset.Value += value
	return nil
}

// TransferFunds moves value between the same asset of two accounts. The
// source key must exist and hold at least the transferred value.
func (s *StateDB) TransferFunds(fromID, toID uint32, value uint32, assetID string) error {
	from, ok := s.assets[AssetKey{AccountID: fromID, AssetID: assetID}]
	if !ok {
		return errors.Wrapf(ErrNoSuchAsset, "account %d asset %s", fromID, assetID)
	}
	if from.Value < value {
		return errors.Wrapf(ErrInsufficientFunds, "account %d asset %s has %d, need %d",
			fromID, assetID, from.Value, value)
	}
	from.Value -= value
	return s.AddFunds(toID, value, assetID)
}

// ApplyCommand executes one command. Mutations from earlier commands of the
// same block are visible to later ones.
func (s *StateDB) ApplyCommand(cmd types.Command) error {
	switch c := cmd.(type) {
	case *types.CreateAccount:
		s.CreateAccount(c.PublicKey)
		return nil
	case *types.AddFunds:
		return s.AddFunds(c.AccountID, c.Value, c.AssetID)
	case *types.TransferFunds:
		return s.TransferFunds(c.AccountFromID, c.AccountToID, c.Value, c.AssetID)
	default:
		return errors.Wrapf(ErrUnknownCommand, "type %T", cmd)
	}
}

// GetAccount returns the account with the given id, or nil.
func (s *StateDB) GetAccount(id uint32) *Account {
	return s.accounts[id]
}

// AccountCount returns the number of accounts.
func (s *StateDB) AccountCount() int { return len(s.accounts) }

// GetAsset returns the value of (accountID, assetID) and whether it exists.
func (s *StateDB) GetAsset(accountID uint32, assetID string) (uint32, bool) {
	asset, ok := s.assets[AssetKey{AccountID: accountID, AssetID: assetID}]
	if !ok {
		return 0, false
	}
	return asset.Value, true
}

// AssetCount returns the number of asset keys.
func (s *StateDB) AssetCount() int { return len(s.assets) }
