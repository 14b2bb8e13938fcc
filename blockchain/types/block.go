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
	"bytes"
	"fmt"

	"golang.org/x/crypto/ed25519"

	"github.com/ledgerd/go-ledgerd/common"
	"github.com/ledgerd/go-ledgerd/crypto"
	"github.com/ledgerd/go-ledgerd/ser/bincode"
)

// Block is an ordered container of transactions plus the proof-of-work header
// linking it to the prior block. Once appended to a chain it is immutable.
type Block struct {
	ID                uint64
	Timestamp         int64 // epoch seconds
	Nonce             uint32
	Signature         []byte
	Hash              []byte
	PreviousBlockHash []byte // nil for the genesis block
	Transactions      []*Transaction
}

// EncodeBincode writes the block in canonical field order.
func (b *Block) EncodeBincode(w *bincode.Writer) {
	w.WriteUint(b.ID)
	w.WriteInt(b.Timestamp)
	w.WriteUint32(b.Nonce)
	w.WriteBytes(b.Signature)
	w.WriteBytes(b.Hash)
	w.WriteBool(b.PreviousBlockHash != nil)
	if b.PreviousBlockHash != nil {
		w.WriteBytes(b.PreviousBlockHash)
	}
	w.WriteLen(len(b.Transactions))
	for _, tx := range b.Transactions {
		tx.EncodeBincode(w)
	}
}

// DecodeBincode reads the block in canonical field order.
func (b *Block) DecodeBincode(r *bincode.Reader) error {
	var err error
	if b.ID, err = r.ReadUint(); err != nil {
		return err
	}
	if b.Timestamp, err = r.ReadInt(); err != nil {
		return err
	}
	if b.Nonce, err = r.ReadUint32(); err != nil {
		return err
	}
	if b.Signature, err = r.ReadBytes(); err != nil {
		return err
	}
	if b.Hash, err = r.ReadBytes(); err != nil {
		return err
	}
	present, err := r.ReadBool()
	if err != nil {
		return err
	}
	if present {
		if b.PreviousBlockHash, err = r.ReadBytes(); err != nil {
			return err
		}
	} else {
		b.PreviousBlockHash = nil
	}
	n, err := r.ReadLen()
	if err != nil {
		return err
	}
	b.Transactions = make([]*Transaction, n)
	for i := 0; i < n; i++ {
		tx := new(Transaction)
		if err := tx.DecodeBincode(r); err != nil {
			return err
		}
		b.Transactions[i] = tx
	}
	return nil
}

// sealBytes is the canonical encoding hashed for proof of work: the block
// with its hash field cleared. The nonce is hashed as stored.
func (b *Block) sealBytes() []byte {
	sealed := *b
	sealed.Hash = nil
	return bincode.Serialize(&sealed)
}

// CalcHash computes the proof-of-work hash of the block.
func (b *Block) CalcHash() []byte {
	h := crypto.Hash(b.sealBytes())
	return h.Bytes()
}

// ValidateHash reports whether the stored hash matches the recomputed one.
func (b *Block) ValidateHash() bool {
	return len(b.Hash) == common.HashLength && bytes.Equal(b.Hash, b.CalcHash())
}

// HashMeetsDifficulty reports whether the stored hash carries the required
// number of leading zero bytes.
func (b *Block) HashMeetsDifficulty(difficulty int) bool {
	return crypto.ValidHash(b.Hash, difficulty)
}

// VerifySignature checks the ed25519 signature over the canonical encoding of
// the block's transactions.
func (b *Block) VerifySignature(pub ed25519.PublicKey) bool {
	return crypto.VerifySignature(pub, SerializeTransactions(b.Transactions), b.Signature)
}

// HashKey returns the block hash as a cache key.
func (b *Block) HashKey() common.Hash {
	return common.BytesToHash(b.Hash)
}

func (b *Block) String() string {
	return fmt.Sprintf("block #%d [hash %s, prev %s, txs %d, nonce %d]",
		b.ID, common.PrintBytes(b.Hash), common.PrintBytes(b.PreviousBlockHash),
		len(b.Transactions), b.Nonce)
}
