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

package types

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/ledgerd/go-ledgerd/ser/bincode"
)

// DataKind is the discriminant of the Data union. The values double as the
// wire event tags, so the numbering 1..5 is part of the external interface.
type DataKind uint8

const (
	KindBlock DataKind = iota + 1
	KindTransaction
	KindPeer
	KindPeers
	KindBlockchain
)

// ErrUnknownDataKind is returned when decoding hits an unknown discriminant.
var ErrUnknownDataKind = errors.New("types: unknown data kind")

// Data is the tagged union routed between the node's actors and carried on
// the wire: a block, a transaction, a peer address, a peer map, or a chain.
type Data interface {
	Kind() DataKind
	EncodeBincode(w *bincode.Writer)
}

func (b *Block) Kind() DataKind       { return KindBlock }
func (tx *Transaction) Kind() DataKind { return KindTransaction }

// Peer is the advertised address of a single peer.
type Peer string

// Peers maps peer identifiers to their addresses.
type Peers map[string]string

// Blockchain is an ordered sequence of blocks.
type Blockchain []*Block

func (p *Peer) Kind() DataKind       { return KindPeer }
func (p *Peers) Kind() DataKind      { return KindPeers }
func (bc *Blockchain) Kind() DataKind { return KindBlockchain }

func (p *Peer) EncodeBincode(w *bincode.Writer) {
	w.WriteString(string(*p))
}

func (p *Peer) DecodeBincode(r *bincode.Reader) error {
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	*p = Peer(s)
	return nil
}

// EncodeBincode writes the map with sorted keys so the encoding is
// deterministic.
func (p *Peers) EncodeBincode(w *bincode.Writer) {
	keys := make([]string, 0, len(*p))
	for k := range *p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.WriteLen(len(keys))
	for _, k := range keys {
		w.WriteString(k)
		w.WriteString((*p)[k])
	}
}

func (p *Peers) DecodeBincode(r *bincode.Reader) error {
	n, err := r.ReadLen()
	if err != nil {
		return err
	}
	m := make(Peers, n)
	for i := 0; i < n; i++ {
		k, err := r.ReadString()
		if err != nil {
			return err
		}
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		m[k] = v
	}
	*p = m
	return nil
}

func (bc *Blockchain) EncodeBincode(w *bincode.Writer) {
	w.WriteLen(len(*bc))
	for _, b := range *bc {
		b.EncodeBincode(w)
	}
}

func (bc *Blockchain) DecodeBincode(r *bincode.Reader) error {
	n, err := r.ReadLen()
	if err != nil {
		return err
	}
	out := make(Blockchain, n)
	for i := 0; i < n; i++ {
		b := new(Block)
		if err := b.DecodeBincode(r); err != nil {
			return err
		}
		out[i] = b
	}
	*bc = out
	return nil
}

// SerializeData encodes a Data value with its discriminant.
func SerializeData(d Data) []byte {
	w := bincode.NewWriter()
	w.WriteUint(uint64(d.Kind()))
	d.EncodeBincode(w)
	return w.Bytes()
}

// DeserializeData decodes a discriminant-prefixed Data value, requiring the
// whole input to be consumed.
func DeserializeData(b []byte) (Data, error) {
	r := bincode.NewReader(b)
	kind, err := r.ReadUint()
	if err != nil {
		return nil, err
	}
	d, err := DecodeDataPayload(r, DataKind(kind))
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, bincode.ErrTrailingBytes
	}
	return d, nil
}

// DecodeDataPayload decodes the payload of the given kind from r.
func DecodeDataPayload(r *bincode.Reader, kind DataKind) (Data, error) {
	switch kind {
	case KindBlock:
		b := new(Block)
		if err := b.DecodeBincode(r); err != nil {
			return nil, err
		}
		return b, nil
	case KindTransaction:
		tx := new(Transaction)
		if err := tx.DecodeBincode(r); err != nil {
			return nil, err
		}
		return tx, nil
	case KindPeer:
		p := new(Peer)
		if err := p.DecodeBincode(r); err != nil {
			return nil, err
		}
		return p, nil
	case KindPeers:
		p := new(Peers)
		if err := p.DecodeBincode(r); err != nil {
			return nil, err
		}
		return p, nil
	case KindBlockchain:
		bc := new(Blockchain)
		if err := bc.DecodeBincode(r); err != nil {
			return nil, err
		}
		return bc, nil
	default:
		return nil, errors.Wrapf(ErrUnknownDataKind, "kind %d", kind)
	}
}
