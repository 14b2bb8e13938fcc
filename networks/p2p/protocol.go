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

// Package p2p implements the framed event protocol spoken between peers and
// by clients submitting transactions. One event travels per connection:
//
//	byte 0       event tag
//	bytes 1..4   payload length L (uint32, big-endian)
//	bytes 5..5+L canonical payload
//	response     a single ack byte, 0x01 on success
package p2p

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/log"
	"github.com/ledgerd/go-ledgerd/params"
	"github.com/ledgerd/go-ledgerd/ser/bincode"
)

var logger = log.NewModuleLogger(log.NetworksP2P)

// EventType tags a framed event. The values match types.DataKind.
type EventType byte

const (
	SendBlock       EventType = 0x01
	SendTransaction EventType = 0x02
	InitPeer        EventType = 0x03
	SendPeers       EventType = 0x04
	SendChain       EventType = 0x05
)

// AckSuccess is the single response byte of an accepted event.
const AckSuccess byte = 0x01

var (
	// ErrCommand flags a malformed event or unknown tag.
	ErrCommand = errors.New("p2p: malformed event")
	// ErrNetwork flags a socket failure, short read/write or missing ack.
	ErrNetwork = errors.New("p2p: network failure")
	// ErrSerialize flags an encoding failure.
	ErrSerialize = errors.New("p2p: serialize failure")
	// ErrDeserialize flags a payload that did not decode.
	ErrDeserialize = errors.New("p2p: deserialize failure")
)

// Dial opens a one-shot event connection to a peer and applies the protocol
// read deadline.
func Dial(addr string) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, params.DialTimeout)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "dial %s: %v", addr, err)
	}
	conn.SetDeadline(time.Now().Add(params.ReadTimeout))
	return conn, nil
}

// SendData frames payload under the given event tag and waits for the ack.
func SendData(conn net.Conn, event EventType, payload []byte) error {
	var head [5]byte
	head[0] = byte(event)
	binary.BigEndian.PutUint32(head[1:], uint32(len(payload)))
	if _, err := conn.Write(head[:]); err != nil {
		return errors.Wrapf(ErrNetwork, "write header: %v", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return errors.Wrapf(ErrNetwork, "write payload: %v", err)
	}
	var ack [1]byte
	if _, err := io.ReadFull(conn, ack[:]); err != nil {
		return errors.Wrapf(ErrNetwork, "read ack: %v", err)
	}
	if ack[0] != AckSuccess {
		return errors.Wrapf(ErrNetwork, "ack byte %#x", ack[0])
	}
	return nil
}

// SendEvent encodes a Data value and sends it under its kind tag.
func SendEvent(conn net.Conn, data types.Data) error {
	return SendData(conn, EventType(data.Kind()), bincode.Serialize(data))
}

// ReadEvent parses exactly one framed event from the connection. It does not
// write the ack; the receiver acks after enqueueing.
func ReadEvent(conn net.Conn) (types.Data, error) {
	var head [5]byte
	if _, err := io.ReadFull(conn, head[:]); err != nil {
		return nil, errors.Wrapf(ErrNetwork, "read header: %v", err)
	}
	tag := head[0]
	if tag < byte(SendBlock) || tag > byte(SendChain) {
		return nil, errors.Wrapf(ErrCommand, "unknown event tag %#x", tag)
	}
	length := binary.BigEndian.Uint32(head[1:])
	if length > params.ProtocolMaxMsgSize {
		return nil, errors.Wrapf(ErrCommand, "payload length %d exceeds cap", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, errors.Wrapf(ErrNetwork, "read payload: %v", err)
	}
	r := bincode.NewReader(payload)
	data, err := types.DecodeDataPayload(r, types.DataKind(tag))
	if err != nil {
		return nil, errors.Wrapf(ErrDeserialize, "event tag %#x: %v", tag, err)
	}
	if r.Remaining() != 0 {
		return nil, errors.Wrapf(ErrDeserialize, "event tag %#x: trailing payload bytes", tag)
	}
	logger.Trace("Event received", "tag", tag, "len", length)
	return data, nil
}

// WriteAck writes the success response byte. It is the last byte the
// receiver writes before closing the connection.
func WriteAck(conn net.Conn) error {
	if _, err := conn.Write([]byte{AckSuccess}); err != nil {
		return errors.Wrapf(ErrNetwork, "write ack: %v", err)
	}
	return nil
}
