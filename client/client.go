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

// Package client implements the two wire roles of a ledger client: fanning
// transactions out to the bootstrap peers and querying a node's chain.
package client

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerd/go-ledgerd/api"
	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/log"
	"github.com/ledgerd/go-ledgerd/networks/p2p"
	"github.com/ledgerd/go-ledgerd/params"
)

var logger = log.NewModuleLogger(log.Client)

// ErrNoPeerAccepted is returned when no peer acked a submitted transaction.
var ErrNoPeerAccepted = errors.New("client: no peer accepted the transaction")

// Client submits transactions to a fixed peer set.
type Client struct {
	peers []string
}

// NewClient returns a client over the given peers; nil selects the
// bootstrap set.
func NewClient(peers []string) *Client {
	if len(peers) == 0 {
		peers = params.BootstrapPeers
	}
	return &Client{peers: peers}
}

// SendTransaction submits the transaction to every peer. The only feedback
// is the transport ack; whether the transaction reaches a block is not
// reported. Per-peer failures are logged, and an error is returned only when
// every peer failed.
func (c *Client) SendTransaction(tx *types.Transaction) error {
	acked := 0
	for _, addr := range c.peers {
		if err := sendToPeer(addr, tx); err != nil {
			logger.Error("Error while sending transaction to peer", "peer", addr, "err", err)
			continue
		}
		acked++
	}
	if acked == 0 {
		return ErrNoPeerAccepted
	}
	return nil
}

func sendToPeer(addr string, tx *types.Transaction) error {
	conn, err := p2p.Dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	return p2p.SendEvent(conn, tx)
}

// Blockchain fetches the last height blocks of the node at addr, ordered
// newest-first.
func Blockchain(addr string, height uint64) (types.Blockchain, error) {
	conn, err := p2p.Dial(addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(params.ReadTimeout))

	if err := api.WriteBlockchainRequest(conn, height); err != nil {
		return nil, err
	}
	payload, err := api.ReadResponse(conn, params.ProtocolMaxMsgSize)
	if err != nil {
		return nil, err
	}
	data, err := types.DeserializeData(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "client: decoding blockchain response")
	}
	chain, ok := data.(*types.Blockchain)
	if !ok {
		return nil, errors.Wrapf(api.ErrAPI, "unexpected response kind %d", data.Kind())
	}
	return *chain, nil
}
