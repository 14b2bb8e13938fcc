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

package node_test

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/client"
	"github.com/ledgerd/go-ledgerd/crypto"
	"github.com/ledgerd/go-ledgerd/networks/p2p"
	"github.com/ledgerd/go-ledgerd/node"
	"github.com/ledgerd/go-ledgerd/params"
	"github.com/ledgerd/go-ledgerd/ser/bincode"
)

func freePort(t *testing.T) int {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func startNode(t *testing.T, port int, peers []string, difficulty int) *node.Node {
	stack, err := node.New(&node.Config{
		Name:       fmt.Sprintf("test-%d", port),
		Host:       "127.0.0.1",
		Port:       port,
		Peers:      peers,
		Difficulty: difficulty,
	})
	require.NoError(t, err)
	require.NoError(t, stack.Start())
	t.Cleanup(func() { stack.Stop() })
	return stack
}

func createAccountTx(key string, fee uint32) *types.Transaction {
	return &types.Transaction{
		Fee:      fee,
		Commands: []types.Command{&types.CreateAccount{PublicKey: key}},
	}
}

func waitHeight(t *testing.T, stack *node.Node, height int, timeout time.Duration) {
	require.Eventually(t, func() bool { return stack.Storage().Height() >= height },
		timeout, 50*time.Millisecond, "chain did not reach height %d", height)
}

// A single node mines its genesis block from ten submitted transactions.
func TestGenesisScenario(t *testing.T) {
	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	stack := startNode(t, port, []string{addr}, params.DefaultDifficulty)

	c := client.NewClient([]string{addr})
	for i := 1; i <= 10; i++ {
		require.NoError(t, c.SendTransaction(createAccountTx(fmt.Sprintf("pk-%d", i), 1)))
	}

	waitHeight(t, stack, 1, 60*time.Second)
	tip := stack.Storage().CurrentBlock()
	require.NotNil(t, tip)
	assert.True(t, tip.ID <= 1)
	assert.Len(t, tip.Transactions, 10)
	assert.Equal(t, byte(0x00), tip.Hash[0])
	assert.Equal(t, byte(0x00), tip.Hash[1])
	assert.Equal(t, 10, stack.Storage().AccountCount())
	for id := uint32(1); id <= 10; id++ {
		assert.NotNil(t, stack.Storage().GetAccount(id), "account %d", id)
	}

	// Ten more transactions extend the chain by a second, linked block.
	for i := 11; i <= 20; i++ {
		require.NoError(t, c.SendTransaction(createAccountTx(fmt.Sprintf("pk-%d", i), 1)))
	}
	waitHeight(t, stack, 2, 60*time.Second)

	chain := stack.Storage().ChainSuffix(2)
	require.Len(t, chain, 2)
	assert.Equal(t, chain[1].Hash, chain[0].PreviousBlockHash)
	assert.Equal(t, 20, stack.Storage().AccountCount())
}

// Blocks committed at one node propagate to its peers byte for byte.
func TestThreeNodeFanOut(t *testing.T) {
	ports := []int{freePort(t), freePort(t), freePort(t)}
	peers := make([]string, len(ports))
	for i, port := range ports {
		peers[i] = fmt.Sprintf("127.0.0.1:%d", port)
	}
	nodeA := startNode(t, ports[0], peers, params.DefaultDifficulty)
	nodeB := startNode(t, ports[1], peers, params.DefaultDifficulty)
	nodeC := startNode(t, ports[2], peers, params.DefaultDifficulty)

	// Inject all transactions at node A only.
	c := client.NewClient([]string{peers[0]})
	for fee := uint32(1); fee <= 30; fee++ {
		require.NoError(t, c.SendTransaction(createAccountTx(fmt.Sprintf("pk-%d", fee), fee)))
	}

	waitHeight(t, nodeA, 3, 120*time.Second)
	waitHeight(t, nodeB, 3, 120*time.Second)
	waitHeight(t, nodeC, 3, 120*time.Second)

	chainA, err := client.Blockchain(nodeQueryAddr(ports[0]), 3)
	require.NoError(t, err)
	chainB, err := client.Blockchain(nodeQueryAddr(ports[1]), 3)
	require.NoError(t, err)
	chainC, err := client.Blockchain(nodeQueryAddr(ports[2]), 3)
	require.NoError(t, err)

	require.Len(t, chainA, 3)
	for i := range chainA {
		raw := bincode.Serialize(chainA[i])
		assert.Equal(t, raw, bincode.Serialize(chainB[i]), "block %d differs at B", i)
		assert.Equal(t, raw, bincode.Serialize(chainC[i]), "block %d differs at C", i)
	}
}

func nodeQueryAddr(port int) string {
	return fmt.Sprintf("127.0.0.1:%d", port+params.QueryPortOffset)
}

// The query path returns the newest blocks first.
func TestBlockchainQuery(t *testing.T) {
	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	stack := startNode(t, port, []string{addr}, params.DefaultDifficulty)

	c := client.NewClient([]string{addr})
	for i := 1; i <= 20; i++ {
		require.NoError(t, c.SendTransaction(createAccountTx(fmt.Sprintf("pk-%d", i), 1)))
	}
	waitHeight(t, stack, 2, 60*time.Second)

	chain, err := client.Blockchain(nodeQueryAddr(port), 1)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, stack.Storage().CurrentBlock().Hash, chain[0].Hash)

	// Asking for more than the chain holds returns the whole chain.
	chain, err = client.Blockchain(nodeQueryAddr(port), 100)
	require.NoError(t, err)
	assert.Len(t, chain, stack.Storage().Height())
}

// A block below difficulty is acked by the transport but never committed.
func TestCorruptHashRejected(t *testing.T) {
	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	stack := startNode(t, port, []string{addr}, params.DefaultDifficulty)

	_, priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	weak := &types.Block{
		ID:           0,
		Timestamp:    time.Now().Unix(),
		Signature:    crypto.Sign(priv, types.SerializeTransactions(nil)),
		Transactions: nil,
	}
	for {
		h := weak.CalcHash()
		if crypto.ValidHash(h, 1) && !crypto.ValidHash(h, 2) {
			weak.Hash = h
			break
		}
		weak.Nonce++
	}

	conn, err := p2p.Dial(addr)
	require.NoError(t, err)
	defer conn.Close()
	// The transport ack succeeds even though storage rejects the block.
	require.NoError(t, p2p.SendEvent(conn, weak))

	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 0, stack.Storage().Height())
}

// Reserved query tags surface as transport errors, not responses.
func TestReservedQueryTagsClosed(t *testing.T) {
	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	startNode(t, port, []string{addr}, params.DefaultDifficulty)

	conn, err := net.Dial("tcp", nodeQueryAddr(port))
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte{0x02})
	require.NoError(t, err)

	buf := make([]byte, 1)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = conn.Read(buf)
	assert.Error(t, err)
}
