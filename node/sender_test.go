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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/networks/p2p"
)

// peerStub accepts framed events and acks them, counting blocks.
func peerStub(t *testing.T) (string, chan *types.Block) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	received := make(chan *types.Block, 10)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			data, err := p2p.ReadEvent(conn)
			if err == nil {
				p2p.WriteAck(conn)
				if block, ok := data.(*types.Block); ok {
					received <- block
				}
			}
			conn.Close()
		}
	}()
	return listener.Addr().String(), received
}

func TestSenderFansOutToOtherPeers(t *testing.T) {
	peerAddr, received := peerStub(t)
	selfAddr := "127.0.0.1:1" // nothing listens here; self must be skipped

	in := make(chan types.Data, 10)
	sender := NewSender(selfAddr, []string{selfAddr, peerAddr}, in)
	sender.Start()
	defer sender.Stop()

	block := &types.Block{ID: 1, Hash: []byte{0, 0, 1}}
	in <- block

	select {
	case got := <-received:
		assert.Equal(t, block.ID, got.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("peer did not receive the block")
	}

	// The same block is not broadcast twice.
	in <- block
	select {
	case <-received:
		t.Fatal("block rebroadcast to peer")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSenderIgnoresNonBlockData(t *testing.T) {
	peerAddr, received := peerStub(t)

	in := make(chan types.Data, 10)
	sender := NewSender("127.0.0.1:1", []string{peerAddr}, in)
	sender.Start()
	defer sender.Stop()

	peer := types.Peer("127.0.0.1:1236")
	in <- &peer
	select {
	case <-received:
		t.Fatal("peer event broadcast as a block")
	case <-time.After(300 * time.Millisecond):
	}
}
