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

// Package api serves the client query protocol on the node's query port.
//
// Request:
//
//	byte 0  request tag
//	tag 1 (Blockchain):  8 bytes height, uint64 big-endian
//	tag 2 (Block):       length-prefixed hash   [reserved]
//	tag 3 (Transaction): length-prefixed hash   [reserved]
//
// Response:
//
//	bytes 0..3   payload length L (uint32, big-endian)
//	bytes 4..4+L canonical Data value
package api

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/pkg/errors"
)

// RequestType tags a client query.
type RequestType byte

const (
	BlockchainRequest  RequestType = 0x01
	BlockRequest       RequestType = 0x02
	TransactionRequest RequestType = 0x03
)

var (
	// ErrAPI flags a query path failure, including the reserved request tags.
	ErrAPI = errors.New("api: request failed")
	// ErrNetwork flags a transport failure on the query connection.
	ErrNetwork = errors.New("api: network failure")
)

// WriteBlockchainRequest emits a chain suffix query for the given height.
func WriteBlockchainRequest(conn net.Conn, height uint64) error {
	var buf [9]byte
	buf[0] = byte(BlockchainRequest)
	binary.BigEndian.PutUint64(buf[1:], height)
	if _, err := conn.Write(buf[:]); err != nil {
		return errors.Wrapf(ErrNetwork, "write request: %v", err)
	}
	return nil
}

// ReadResponse reads one length-framed response payload.
func ReadResponse(conn net.Conn, maxSize uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return nil, errors.Wrapf(ErrNetwork, "read length: %v", err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > maxSize {
		return nil, errors.Wrapf(ErrAPI, "response length %d exceeds cap", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, errors.Wrapf(ErrNetwork, "read payload: %v", err)
	}
	return payload, nil
}

// WriteResponse frames one response payload.
func WriteResponse(conn net.Conn, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		return errors.Wrapf(ErrNetwork, "write length: %v", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return errors.Wrapf(ErrNetwork, "write payload: %v", err)
	}
	return nil
}
