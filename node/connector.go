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

	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/params"
)

// Connector is the stateless switch between the node's actors. It owns four
// bounded endpoints and forwards by data kind; payloads are never
// transformed. A full endpoint suspends the producer, which is the node's
// back-pressure.
//
// Routing:
//
//	receiver_in  Block, Transaction -> miner_in
//	receiver_in  Peer, Peers        -> sender_out
//	miner_out    Block              -> sender_out
type Connector struct {
	receiverIn chan types.Data
	senderOut  chan types.Data
	minerIn    chan types.Data
	minerOut   chan types.Data

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewConnector creates the router with all endpoints bounded to the
// configured channel capacity.
func NewConnector() *Connector {
	return &Connector{
		receiverIn: make(chan types.Data, params.RouterChannelSize),
		senderOut:  make(chan types.Data, params.RouterChannelSize),
		minerIn:    make(chan types.Data, params.RouterChannelSize),
		minerOut:   make(chan types.Data, params.RouterChannelSize),
		quit:       make(chan struct{}),
	}
}

// ReceiverIn is the endpoint the receiver produces into.
func (c *Connector) ReceiverIn() chan<- types.Data { return c.receiverIn }

// SenderOut is the endpoint the sender consumes from.
func (c *Connector) SenderOut() <-chan types.Data { return c.senderOut }

// MinerIn is the endpoint the miner consumes from.
func (c *Connector) MinerIn() <-chan types.Data { return c.minerIn }

// MinerOut is the endpoint the miner produces into.
func (c *Connector) MinerOut() chan<- types.Data { return c.minerOut }

// Start spawns one routing loop per inbound endpoint. Per-endpoint FIFO
// order is preserved.
func (c *Connector) Start() {
	c.wg.Add(2)
	go c.routeReceiver()
	go c.routeMiner()
}

// Stop aborts both loops at their next suspension point.
func (c *Connector) Stop() {
	c.once.Do(func() { close(c.quit) })
	c.wg.Wait()
}

func (c *Connector) routeReceiver() {
	defer c.wg.Done()
	for {
		select {
		case data := <-c.receiverIn:
			switch data.Kind() {
			case types.KindBlock, types.KindTransaction:
				c.forward(c.minerIn, data)
			case types.KindPeer, types.KindPeers:
				c.forward(c.senderOut, data)
			default:
				logger.Error("Unroutable data from receiver", "kind", data.Kind())
			}
		case <-c.quit:
			return
		}
	}
}

func (c *Connector) routeMiner() {
	defer c.wg.Done()
	for {
		select {
		case data := <-c.minerOut:
			switch data.Kind() {
			case types.KindBlock:
				c.forward(c.senderOut, data)
			default:
				logger.Error("Unroutable data from miner", "kind", data.Kind())
			}
		case <-c.quit:
			return
		}
	}
}

func (c *Connector) forward(ch chan types.Data, data types.Data) {
	select {
	case ch <- data:
	case <-c.quit:
	}
}
