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

package blockchain

import (
	"container/heap"
	"sync"

	"github.com/rcrowley/go-metrics"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
)

var (
	txPoolAddMeter   = metrics.NewRegisteredMeter("txpool/add", nil)
	txPoolDrainMeter = metrics.NewRegisteredMeter("txpool/drain", nil)
	txPoolPendGauge  = metrics.NewRegisteredGauge("txpool/pending", nil)
)

// txPriceHeap orders transactions by fee, highest first. Ties keep no
// particular order.
type txPriceHeap []*types.Transaction

func (h txPriceHeap) Len() int            { return len(h) }
func (h txPriceHeap) Less(i, j int) bool  { return h[i].Fee > h[j].Fee }
func (h txPriceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *txPriceHeap) Push(x interface{}) { *h = append(*h, x.(*types.Transaction)) }

func (h *txPriceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	tx := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return tx
}

// TxPool is the node-local mempool: an unbounded producer / batching
// consumer priority queue of not-yet-committed transactions, ordered by fee
// descending. Well-formedness of commands is the only admission check; the
// ledger state is consulted at block application time.
type TxPool struct {
	mu   sync.Mutex
	heap txPriceHeap
}

// NewTxPool returns an empty pool.
func NewTxPool() *TxPool {
	return &TxPool{}
}

// Add inserts one transaction.
func (p *TxPool) Add(tx *types.Transaction) {
	p.mu.Lock()
	heap.Push(&p.heap, tx)
	txPoolPendGauge.Update(int64(len(p.heap)))
	p.mu.Unlock()
	txPoolAddMeter.Mark(1)
}

// AddAll re-queues a batch, e.g. after a mined block failed to append.
func (p *TxPool) AddAll(txs []*types.Transaction) {
	p.mu.Lock()
	for _, tx := range txs {
		heap.Push(&p.heap, tx)
	}
	txPoolPendGauge.Update(int64(len(p.heap)))
	p.mu.Unlock()
	txPoolAddMeter.Mark(int64(len(txs)))
}

// Len returns the number of pending transactions.
func (p *TxPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.heap)
}

// Drain pops up to n transactions in fee order, highest first. The miner
// only calls it after observing Len() >= n, keeping batches full.
func (p *TxPool) Drain(n int) []*types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > len(p.heap) {
		n = len(p.heap)
	}
	batch := make([]*types.Transaction, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, heap.Pop(&p.heap).(*types.Transaction))
	}
	txPoolPendGauge.Update(int64(len(p.heap)))
	txPoolDrainMeter.Mark(int64(len(batch)))
	return batch
}
