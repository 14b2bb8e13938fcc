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
	"fmt"

	"github.com/ledgerd/go-ledgerd/params"
)

// Config collects everything needed to assemble a node.
type Config struct {
	// Name is the instance name used in logs.
	Name string

	// Host is the interface the listeners bind to.
	Host string

	// Port is the P2P listening port; the query listener binds to
	// Port + params.QueryPortOffset. The port doubles as the node id.
	Port int

	// Peers is the bootstrap peer set, self included.
	Peers []string

	// Difficulty is the number of leading zero bytes a block hash must carry.
	Difficulty int

	// StrictIDCheck enforces block id linkage on append.
	StrictIDCheck bool
}

// P2PAddr returns the host:port the peer listener binds to.
func (c *Config) P2PAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// QueryAddr returns the host:port the client query listener binds to.
func (c *Config) QueryAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port+params.QueryPortOffset)
}

// NodeID derives the node identity from the listening port.
func (c *Config) NodeID() uint64 {
	return uint64(c.Port)
}
