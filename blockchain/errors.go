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

package blockchain

import "github.com/pkg/errors"

var (
	// ErrBlock is returned when a block fails validation or application.
	ErrBlock = errors.New("blockchain: invalid block")
	// ErrGenesisBlock is returned for an invalid genesis candidate.
	ErrGenesisBlock = errors.New("blockchain: invalid genesis block")
	// ErrKnownBlock is returned when the block is already the chain tip.
	ErrKnownBlock = errors.New("blockchain: block already known")
)
