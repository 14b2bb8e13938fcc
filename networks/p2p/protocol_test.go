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

package p2p

import (
	"net"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
)

// pipe returns both ends of a loopback TCP connection.
func pipe(t *testing.T) (client net.Conn, server net.Conn) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	done := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			done <- conn
		}
	}()
	client, err = net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	return client, <-done
}

func TestEventRoundTrip(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	tx := &types.Transaction{
		Fee:      42,
		Commands: []types.Command{&types.CreateAccount{PublicKey: "pk-1"}},
	}

	sent := make(chan error, 1)
	go func() { sent <- SendEvent(client, tx) }()

	data, err := ReadEvent(server)
	require.NoError(t, err)
	require.NoError(t, WriteAck(server))
	require.NoError(t, <-sent)

	decoded, ok := data.(*types.Transaction)
	require.True(t, ok)
	assert.Equal(t, tx, decoded)
}

func TestReadEventRejectsUnknownTag(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	go client.Write([]byte{0x09, 0, 0, 0, 0})
	_, err := ReadEvent(server)
	assert.Equal(t, ErrCommand, errors.Cause(err))
}

func TestReadEventRejectsOversizedFrame(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	go client.Write([]byte{0x01, 0xff, 0xff, 0xff, 0xff})
	_, err := ReadEvent(server)
	assert.Equal(t, ErrCommand, errors.Cause(err))
}

func TestReadEventRejectsCorruptPayload(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	go client.Write([]byte{0x02, 0x00, 0x00, 0x00, 0x01, 0xfe})
	_, err := ReadEvent(server)
	assert.Equal(t, ErrDeserialize, errors.Cause(err))
}

func TestSendDataSurfacesFailureAck(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	sent := make(chan error, 1)
	go func() { sent <- SendData(client, SendBlock, []byte{0x01}) }()

	_, err := ReadEvent(server)
	require.Error(t, err) // one byte is not a block
	_, err = server.Write([]byte{0x00})
	require.NoError(t, err)

	err = <-sent
	assert.Equal(t, ErrNetwork, errors.Cause(err))
}

func TestSendDataFailsOnMissingAck(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()

	sent := make(chan error, 1)
	go func() { sent <- SendData(client, SendBlock, []byte{0x01}) }()

	ReadEvent(server)
	server.Close() // connection dies before the ack

	err := <-sent
	assert.Equal(t, ErrNetwork, errors.Cause(err))
}
