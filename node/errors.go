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

import "github.com/pkg/errors"

var (
	// ErrSync flags a closed routing channel; the affected task warrants a
	// restart.
	ErrSync = errors.New("node: routing channel closed")
	// ErrNodeStopped is returned from operations on a stopped node.
	ErrNodeStopped = errors.New("node: not started")
	// ErrNodeRunning is returned when starting an already running node.
	ErrNodeRunning = errors.New("node: already running")
)
