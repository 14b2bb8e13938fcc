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

package log

// ModuleID distinguishes the logging modules of the node.
type ModuleID int

const (
	ModuleUnknown ModuleID = iota
	CMDLCN
	CmdUtils
	Common
	Crypto
	Ser
	BlockchainTypes
	BlockchainState
	Blockchain
	TxPool
	Work
	NetworksP2P
	Node
	API
	Client
	Metrics
)

var moduleNames = [...]string{
	ModuleUnknown:   "unknown",
	CMDLCN:          "cmd/lcn",
	CmdUtils:        "cmd/utils",
	Common:          "common",
	Crypto:          "crypto",
	Ser:             "ser",
	BlockchainTypes: "blockchain/types",
	BlockchainState: "blockchain/state",
	Blockchain:      "blockchain",
	TxPool:          "txpool",
	Work:            "work",
	NetworksP2P:     "networks/p2p",
	Node:            "node",
	API:             "api",
	Client:          "client",
	Metrics:         "metrics",
}

func (mi ModuleID) String() string {
	if mi < 0 || int(mi) >= len(moduleNames) {
		return "unknown"
	}
	return moduleNames[mi]
}
