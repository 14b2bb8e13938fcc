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

package params

import "time"

const (
	// MaxTransactionsInBlock caps the transaction count of any valid block.
	MaxTransactionsInBlock = 100

	// TxBatchSize is the number of transactions the miner drains from the
	// transaction pool for one candidate block. No partial batches are mined.
	TxBatchSize = 10

	// DefaultDifficulty is the number of leading zero bytes a valid block
	// hash must carry. Tunable per network size.
	DefaultDifficulty = 2

	// NativeAssetID is the asset credited as the block reward.
	NativeAssetID = "NATIVE"

	// RewardAccountID receives the block reward after every non-genesis append.
	RewardAccountID = 1

	// BlockRewardValue is the reward credited per appended block.
	BlockRewardValue = 1
)

const (
	// TxPoolScanInterval is how long the miner sleeps between checks for a
	// full transaction batch.
	TxPoolScanInterval = 4 * time.Second

	// StorageRetryInterval is the back-off used by the query API while the
	// storage lock is contended.
	StorageRetryInterval = 300 * time.Millisecond

	// RouterChannelSize bounds every connector endpoint. Producers suspend
	// when an endpoint is full, pushing back on the socket accept path.
	RouterChannelSize = 10
)

// ProtocolMaxMsgSize is the maximum cap on the size of a framed protocol message.
const ProtocolMaxMsgSize = 10 * 1024 * 1024
