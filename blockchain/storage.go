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

// Package blockchain implements the ledger state machine: the validated
// chain tail plus the account and asset state, with an atomic
// append-or-reject operation, and the fee-ordered transaction pool.
package blockchain

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"

	"github.com/ledgerd/go-ledgerd/blockchain/state"
	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/common"
	"github.com/ledgerd/go-ledgerd/log"
	"github.com/ledgerd/go-ledgerd/params"
)

var logger = log.NewModuleLogger(log.Blockchain)

var (
	blockInsertCounter = metrics.NewRegisteredCounter("blockchain/inserts", nil)
	blockRejectCounter = metrics.NewRegisteredCounter("blockchain/rejects", nil)
	chainHeightGauge   = metrics.NewRegisteredGauge("blockchain/height", nil)
)

// StorageConfig tunes validation.
type StorageConfig struct {
	// Difficulty is the required number of leading zero bytes of a block hash.
	Difficulty int
	// StrictIDCheck additionally enforces block id linkage on append.
	StrictIDCheck bool
}

// DefaultStorageConfig returns the protocol defaults.
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{Difficulty: params.DefaultDifficulty}
}

// Storage is the authoritative chain and ledger state of one node. All
// access goes through an exclusive lock; the lock is never held across
// network I/O or mining.
type Storage struct {
	id     uint64
	config *StorageConfig

	lock  chan struct{} // exclusive lock, capacity 1
	chain []*types.Block
	sdb   *state.StateDB
}

// NewStorage creates an empty ledger for the node with the given id.
func NewStorage(id uint64, config *StorageConfig) *Storage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	return &Storage{
		id:     id,
		config: config,
		lock:   make(chan struct{}, 1),
		sdb:    state.NewStateDB(),
	}
}

// Lock acquires the storage lock, suspending until it is free.
func (s *Storage) Lock() { s.lock <- struct{}{} }

// Unlock releases the storage lock.
func (s *Storage) Unlock() { <-s.lock }

// TryLock attempts to acquire the lock without suspending.
func (s *Storage) TryLock() bool {
	select {
	case s.lock <- struct{}{}:
		return true
	default:
		return false
	}
}

// TryAddBlock validates the block against the current tip, executes its
// commands and appends it. The append is atomic: a failing command leaves
// chain and state untouched. The lock is held for the whole operation.
func (s *Storage) TryAddBlock(block *types.Block) error {
	s.Lock()
	defer s.Unlock()

	if err := s.tryAddBlock(block); err != nil {
		blockRejectCounter.Inc(1)
		return err
	}
	blockInsertCounter.Inc(1)
	chainHeightGauge.Update(int64(len(s.chain)))
	return nil
}

func (s *Storage) tryAddBlock(block *types.Block) error {
	if len(s.chain) == 0 {
		return s.tryAddGenesisBlock(block)
	}
	prev := s.chain[len(s.chain)-1]
	if bytes.Equal(block.Hash, prev.Hash) {
		return ErrKnownBlock
	}
	if err := s.validateBlock(block, prev); err != nil {
		return err
	}
	sdb, err := s.executeTransactions(block)
	if err != nil {
		return err
	}
	s.sdb = sdb
	s.chain = append(s.chain, block)
	logger.Info("Block added to blockchain", "node", s.id, "id", block.ID,
		"hash", common.PrintBytes(block.Hash), "txs", len(block.Transactions))
	s.rewardMinedBlock()
	return nil
}

func (s *Storage) tryAddGenesisBlock(block *types.Block) error {
	if block.PreviousBlockHash != nil {
		return errors.Wrap(ErrGenesisBlock, "previous block hash present")
	}
	if block.ID > 1 {
		return errors.Wrapf(ErrGenesisBlock, "invalid block id %d", block.ID)
	}
	if len(block.Transactions) > params.MaxTransactionsInBlock {
		return errors.Wrapf(ErrGenesisBlock, "transaction count %d exceeded", len(block.Transactions))
	}
	if !s.validateHash(block) {
		return errors.Wrapf(ErrGenesisBlock, "invalid hash %s", common.PrintBytes(block.Hash))
	}
	sdb, err := s.executeTransactions(block)
	if err != nil {
		return err
	}
	s.sdb = sdb
	s.chain = append(s.chain, block)
	logger.Info("Genesis block added to blockchain", "node", s.id, "id", block.ID,
		"txs", len(block.Transactions))
	return nil
}

// executeTransactions dry-runs every command of every transaction against a
// copy of the state and returns the copy. Any failure aborts the append.
func (s *Storage) executeTransactions(block *types.Block) (*state.StateDB, error) {
	sdb := s.sdb.Copy()
	for _, tx := range block.Transactions {
		for _, cmd := range tx.Commands {
			if err := sdb.ApplyCommand(cmd); err != nil {
				return nil, errors.Wrapf(ErrBlock, "command failed: %v", err)
			}
		}
	}
	return sdb, nil
}

func (s *Storage) validateBlock(block, prev *types.Block) error {
	if s.config.StrictIDCheck && block.ID != prev.ID+1 {
		return errors.Wrapf(ErrBlock, "invalid block id %d after %d", block.ID, prev.ID)
	}
	if block.PreviousBlockHash == nil || !bytes.Equal(block.PreviousBlockHash, prev.Hash) {
		return errors.Wrapf(ErrBlock, "previous block hash mismatch, tip %s",
			common.PrintBytes(prev.Hash))
	}
	if len(block.Transactions) > params.MaxTransactionsInBlock {
		return errors.Wrapf(ErrBlock, "transaction count %d exceeded", len(block.Transactions))
	}
	if !common.DayTime(block.Timestamp).After(common.DayTime(prev.Timestamp)) {
		return errors.Wrapf(ErrBlock, "invalid timestamp %d after %d", block.Timestamp, prev.Timestamp)
	}
	if !s.validateHash(block) {
		return errors.Wrapf(ErrBlock, "invalid hash %s", common.PrintBytes(block.Hash))
	}
	return nil
}

// validateHash checks difficulty and recomputes the hash over the block with
// its hash field cleared.
func (s *Storage) validateHash(block *types.Block) bool {
	return block.HashMeetsDifficulty(s.config.Difficulty) && block.ValidateHash()
}

// ValidateChain folds pairwise validation over an entire remote chain. The
// node has no chain sync path that calls it; peer blocks are appended one at
// a time through TryAddBlock.
func (s *Storage) ValidateChain(chain []*types.Block) error {
	for i := 1; i < len(chain); i++ {
		if err := s.validateBlock(chain[i], chain[i-1]); err != nil {
			return errors.Wrapf(err, "at height %d", i)
		}
	}
	return nil
}

func (s *Storage) rewardMinedBlock() {
	if err := s.sdb.AddFunds(params.RewardAccountID, params.BlockRewardValue, params.NativeAssetID); err != nil {
		logger.Error("Failed to credit block reward", "err", err)
	}
}

// CurrentBlock returns the chain tip, or nil for an empty chain. The lock is
// taken briefly.
func (s *Storage) CurrentBlock() *types.Block {
	s.Lock()
	defer s.Unlock()
	if len(s.chain) == 0 {
		return nil
	}
	return s.chain[len(s.chain)-1]
}

// Height returns the chain length.
func (s *Storage) Height() int {
	s.Lock()
	defer s.Unlock()
	return len(s.chain)
}

// ChainSuffix returns the last height blocks ordered newest-first. It is the
// query path: the lock is retried with a bounded back-off until free.
func (s *Storage) ChainSuffix(height uint64) types.Blockchain {
	for !s.TryLock() {
		logger.Debug("Storage is locked yet", "node", s.id)
		time.Sleep(params.StorageRetryInterval)
	}
	defer s.Unlock()

	n := len(s.chain)
	if height < uint64(n) {
		n = int(height)
	}
	suffix := make(types.Blockchain, 0, n)
	for i := len(s.chain) - 1; i >= len(s.chain)-n; i-- {
		suffix = append(suffix, s.chain[i])
	}
	return suffix
}

// AccountCount reports the number of accounts in the ledger state.
func (s *Storage) AccountCount() int {
	s.Lock()
	defer s.Unlock()
	return s.sdb.AccountCount()
}

// GetAccount returns a copy of the account with the given id, or nil.
func (s *Storage) GetAccount(id uint32) *state.Account {
	s.Lock()
	defer s.Unlock()
	acc := s.sdb.GetAccount(id)
	if acc == nil {
		return nil
	}
	cpy := *acc
	return &cpy
}

// GetAsset returns the value of (accountID, assetID) and whether it exists.
func (s *Storage) GetAsset(accountID uint32, assetID string) (uint32, bool) {
	s.Lock()
	defer s.Unlock()
	return s.sdb.GetAsset(accountID, assetID)
}

// AssetCount reports the number of asset keys in the ledger state.
func (s *Storage) AssetCount() int {
	s.Lock()
	defer s.Unlock()
	return s.sdb.AssetCount()
}
