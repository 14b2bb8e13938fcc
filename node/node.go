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

// Package node composes the four long-lived actors of a ledger peer around
// the router: receiver, sender, miner and storage, plus the client query
// server. No actor owns another; they hold only channel endpoints into the
// connector, so composition is free of shared-mutable graphs.
package node

import (
	"sync"

	"github.com/ledgerd/go-ledgerd/api"
	"github.com/ledgerd/go-ledgerd/blockchain"
	"github.com/ledgerd/go-ledgerd/log"
	"github.com/ledgerd/go-ledgerd/work"
)

var logger = log.NewModuleLogger(log.Node)

// Node is one peer of the ledger network.
type Node struct {
	config *Config

	storage   *blockchain.Storage
	txPool    *blockchain.TxPool
	connector *Connector
	receiver  *Receiver
	sender    *Sender
	miner     *work.Miner
	apiServer *api.Server

	startStopMu sync.Mutex
	running     bool
	stopCh      chan struct{}
}

// New assembles a node from its configuration. Listeners are not bound and
// no goroutine runs until Start.
func New(config *Config) (*Node, error) {
	cfg := *config
	if cfg.Difficulty == 0 {
		cfg.Difficulty = DefaultConfig.Difficulty
	}
	if cfg.Host == "" {
		cfg.Host = DefaultConfig.Host
	}
	if len(cfg.Peers) == 0 {
		cfg.Peers = DefaultConfig.Peers
	}

	storage := blockchain.NewStorage(cfg.NodeID(), &blockchain.StorageConfig{
		Difficulty:    cfg.Difficulty,
		StrictIDCheck: cfg.StrictIDCheck,
	})
	txPool := blockchain.NewTxPool()
	miner, err := work.New(cfg.NodeID(), storage, txPool, cfg.Difficulty)
	if err != nil {
		return nil, err
	}
	return &Node{
		config:  &cfg,
		storage: storage,
		txPool:  txPool,
		miner:   miner,
	}, nil
}

// Start binds the listeners, wires the actors to the router and spawns them.
func (n *Node) Start() error {
	n.startStopMu.Lock()
	defer n.startStopMu.Unlock()
	if n.running {
		return ErrNodeRunning
	}

	n.connector = NewConnector()
	n.miner.Connect(n.connector.MinerIn(), n.connector.MinerOut())

	receiver, err := NewReceiver(n.config.P2PAddr(), n.connector.ReceiverIn())
	if err != nil {
		return err
	}
	n.receiver = receiver
	n.sender = NewSender(n.config.P2PAddr(), n.config.Peers, n.connector.SenderOut())

	apiServer, err := api.NewServer(n.config.QueryAddr(), n.storage)
	if err != nil {
		n.receiver.Stop()
		return err
	}
	n.apiServer = apiServer

	n.connector.Start()
	n.receiver.Start()
	n.sender.Start()
	n.miner.Start()
	n.apiServer.Start()

	n.running = true
	n.stopCh = make(chan struct{})
	logger.Info("Node started", "name", n.config.Name, "p2p", n.config.P2PAddr(),
		"query", n.config.QueryAddr(), "peers", len(n.config.Peers))
	return nil
}

// Stop aborts every actor at its next suspension point. An in-flight
// storage append completes before its owner observes the shutdown.
func (n *Node) Stop() error {
	n.startStopMu.Lock()
	defer n.startStopMu.Unlock()
	if !n.running {
		return ErrNodeStopped
	}
	n.apiServer.Stop()
	n.miner.Stop()
	n.receiver.Stop()
	n.sender.Stop()
	n.connector.Stop()
	n.running = false
	close(n.stopCh)
	logger.Info("Node stopped", "name", n.config.Name)
	return nil
}

// Wait blocks until the node has been stopped.
func (n *Node) Wait() {
	n.startStopMu.Lock()
	if !n.running {
		n.startStopMu.Unlock()
		return
	}
	stop := n.stopCh
	n.startStopMu.Unlock()
	<-stop
}

// Storage exposes the node's ledger, e.g. to the query path and tests.
func (n *Node) Storage() *blockchain.Storage { return n.storage }

// TxPool exposes the node's mempool.
func (n *Node) TxPool() *blockchain.TxPool { return n.txPool }

// Miner exposes the node's miner.
func (n *Node) Miner() *work.Miner { return n.miner }
