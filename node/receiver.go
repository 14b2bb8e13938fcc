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
	"net"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/common"
	"github.com/ledgerd/go-ledgerd/networks/p2p"
	"github.com/ledgerd/go-ledgerd/params"
)

const knownBlockCacheSize = 1024

var (
	recvEventCounter = metrics.NewRegisteredCounter("node/receiver/events", nil)
	recvErrorCounter = metrics.NewRegisteredCounter("node/receiver/errors", nil)
	recvDupCounter   = metrics.NewRegisteredCounter("node/receiver/duplicates", nil)
)

// Receiver accepts inbound peer and client connections, parses one framed
// event per connection and forwards it to the router. Connections are
// handled in accept order; a full router endpoint back-pressures the accept
// loop.
type Receiver struct {
	addr     string
	listener net.Listener
	out      chan<- types.Data

	// knownBlocks drops re-announced block hashes before they reach the
	// router; storage would reject them anyway.
	knownBlocks common.Cache

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewReceiver binds the P2P listener on addr.
func NewReceiver(addr string, out chan<- types.Data) (*Receiver, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Receiver{
		addr:        addr,
		listener:    listener,
		out:         out,
		knownBlocks: common.NewCache(knownBlockCacheSize),
		quit:        make(chan struct{}),
	}, nil
}

// Start runs the accept loop.
func (r *Receiver) Start() {
	r.wg.Add(1)
	go r.acceptLoop()
}

// Stop closes the listener and waits for the accept loop.
func (r *Receiver) Stop() {
	r.once.Do(func() {
		close(r.quit)
		r.listener.Close()
	})
	r.wg.Wait()
}

func (r *Receiver) acceptLoop() {
	defer r.wg.Done()
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			select {
			case <-r.quit:
				return
			default:
			}
			logger.Error("Accept failed, rebinding listener", "addr", r.addr, "err", err)
			if rebindErr := r.rebind(); rebindErr != nil {
				logger.Error("Rebind failed, receiver exiting", "addr", r.addr, "err", rebindErr)
				return
			}
			continue
		}
		logger.Trace("Accepted socket", "remote", conn.RemoteAddr())
		if err := r.handle(conn); err != nil {
			recvErrorCounter.Inc(1)
			logger.Error("Error processing incoming data", "remote", conn.RemoteAddr(), "err", err)
		}
		conn.Close()
	}
}

func (r *Receiver) rebind() error {
	r.listener.Close()
	var err error
	for i := 0; i < 3; i++ {
		if r.listener, err = net.Listen("tcp", r.addr); err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return err
}

// handle parses one event, enqueues it and acks. The ack byte is the last
// byte written before the connection closes.
func (r *Receiver) handle(conn net.Conn) error {
	conn.SetDeadline(time.Now().Add(params.ReadTimeout))
	data, err := p2p.ReadEvent(conn)
	if err != nil {
		return err
	}
	recvEventCounter.Inc(1)
	if block, ok := data.(*types.Block); ok {
		if r.knownBlocks.Contains(block.HashKey()) {
			recvDupCounter.Inc(1)
			logger.Debug("Dropping already seen block", "id", block.ID,
				"hash", common.PrintBytes(block.Hash))
			return p2p.WriteAck(conn)
		}
		r.knownBlocks.Add(block.HashKey(), struct{}{})
	}
	select {
	case r.out <- data:
	case <-r.quit:
		return ErrSync
	}
	return p2p.WriteAck(conn)
}
