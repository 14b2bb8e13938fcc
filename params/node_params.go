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
	// DefaultP2PPort is the port the first bootstrap node listens on.
	DefaultP2PPort = 1234

	// QueryPortOffset separates the client query listener from the P2P one.
	QueryPortOffset = 10

	// LocalHost prefixes every bootstrap address of the development network.
	LocalHost = "127.0.0.1"
)

const (
	// DialTimeout bounds outbound connection establishment to a peer.
	DialTimeout = 3 * time.Second

	// ReadTimeout is the per-request read deadline on peer and client sockets.
	ReadTimeout = 10 * time.Second
)

// BootstrapPeers is the fixed development peer set. Production deployments
// replace this through the node configuration.
var BootstrapPeers = []string{
	"127.0.0.1:1234",
	"127.0.0.1:1235",
	"127.0.0.1:1236",
}
