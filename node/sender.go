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

package node

import (
	"sync"

	"github.com/rcrowley/go-metrics"
	"gopkg.in/fatih/set.v0"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/common"
	"github.com/ledgerd/go-ledgerd/networks/p2p"
)

var (
	sendBlockCounter = metrics.NewRegisteredCounter("node/sender/blocks", nil)
	sendErrorCounter = metrics.NewRegisteredCounter("node/sender/errors", nil)
)

// Sender fans locally mined blocks out to every other peer. Each send is a
// one-shot connection: dial, frame, await ack, close. Per-peer failures are
// logged and isolated.
type Sender struct {
	selfAddr string
	peers    *set.Set // peer addresses, self included; self is skipped at send time
	in       <-chan types.Data

	// knownBlocks suppresses re-broadcasting a block hash this sender has
	// already fanned out.
	knownBlocks common.Cache

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewSender creates a sender over the bootstrap peer set.
func NewSender(selfAddr string, peers []string, in <-chan types.Data) *Sender {
	peerSet := set.New()
	for _, addr := range peers {
		peerSet.Add(addr)
	}
	return &Sender{
		selfAddr:    selfAddr,
		peers:       peerSet,
		in:          in,
		knownBlocks: common.NewCache(knownBlockCacheSize),
		quit:        make(chan struct{}),
	}
}

// Start runs the fan-out loop.
func (s *Sender) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop aborts the loop at its next suspension point.
func (s *Sender) Stop() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}

func (s *Sender) loop() {
	defer s.wg.Done()
	for {
		select {
		case data := <-s.in:
			switch d := data.(type) {
			case *types.Block:
				s.broadcastBlock(d)
			default:
				// Peer, Peers and Blockchain fan-out is reserved for peer
				// discovery and sync.
				logger.Info("Ignoring unimplemented outbound data", "kind", data.Kind())
			}
		case <-s.quit:
			return
		}
	}
}

func (s *Sender) broadcastBlock(block *types.Block) {
	if s.knownBlocks.Contains(block.HashKey()) {
		return
	}
	s.knownBlocks.Add(block.HashKey(), struct{}{})
	s.peers.Each(func(item interface{}) bool {
		addr := item.(string)
		if addr == s.selfAddr {
			return true
		}
		go s.sendBlock(addr, block)
		return true
	})
}

func (s *Sender) sendBlock(addr string, block *types.Block) {
	conn, err := p2p.Dial(addr)
	if err != nil {
		sendErrorCounter.Inc(1)
		logger.Error("Could not establish connection", "peer", addr, "err", err)
		return
	}
	defer conn.Close()
	if err := p2p.SendEvent(conn, block); err != nil {
		sendErrorCounter.Inc(1)
		logger.Error("Error while sending block to peer", "peer", addr,
			"id", block.ID, "err", err)
		return
	}
	sendBlockCounter.Inc(1)
	logger.Debug("Block sent to peer", "peer", addr, "id", block.ID,
		"hash", common.PrintBytes(block.Hash))
}
