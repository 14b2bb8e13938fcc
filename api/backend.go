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

package api

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/ledgerd/go-ledgerd/blockchain"
	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/log"
	"github.com/ledgerd/go-ledgerd/params"
)

var logger = log.NewModuleLogger(log.API)

var (
	apiRequestCounter = metrics.NewRegisteredCounter("api/requests", nil)
	apiErrorCounter   = metrics.NewRegisteredCounter("api/errors", nil)
)

// Server answers client chain queries against the node's storage.
type Server struct {
	addr     string
	listener net.Listener
	storage  *blockchain.Storage

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewServer binds the query listener on addr.
func NewServer(addr string, storage *blockchain.Storage) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		addr:     addr,
		listener: listener,
		storage:  storage,
		quit:     make(chan struct{}),
	}, nil
}

// Start runs the accept loop.
func (s *Server) Start() {
	s.wg.Add(1)
	go s.acceptLoop()
	logger.Info("Query API started", "addr", s.addr)
}

// Stop closes the listener and waits for the accept loop.
func (s *Server) Stop() {
	s.once.Do(func() {
		close(s.quit)
		s.listener.Close()
	})
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			logger.Error("API accept failed", "addr", s.addr, "err", err)
			continue
		}
		if err := s.handle(conn); err != nil {
			apiErrorCounter.Inc(1)
			logger.Error("API request failed", "remote", conn.RemoteAddr(), "err", err)
		}
		conn.Close()
	}
}

func (s *Server) handle(conn net.Conn) error {
	conn.SetDeadline(time.Now().Add(params.ReadTimeout))
	var tagBuf [1]byte
	if _, err := io.ReadFull(conn, tagBuf[:]); err != nil {
		return ErrNetwork
	}
	apiRequestCounter.Inc(1)
	switch RequestType(tagBuf[0]) {
	case BlockchainRequest:
		var heightBuf [8]byte
		if _, err := io.ReadFull(conn, heightBuf[:]); err != nil {
			return ErrNetwork
		}
		height := binary.BigEndian.Uint64(heightBuf[:])
		chain := s.storage.ChainSuffix(height)
		return WriteResponse(conn, types.SerializeData(&chain))
	case BlockRequest, TransactionRequest:
		// Reserved: hash lookups are not served yet. The connection closes
		// without a response, surfacing a transport error to the client.
		return ErrAPI
	default:
		return ErrAPI
	}
}
