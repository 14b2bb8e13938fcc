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
	"fmt"

	"github.com/ledgerd/go-ledgerd/ser/bincode"
)

// Transaction is an ordered sequence of commands applied atomically to the
// ledger, carrying the fee that orders it in the transaction pool.
type Transaction struct {
	Fee      uint32
	Commands []Command
}

// EncodeBincode writes the transaction in canonical field order.
func (tx *Transaction) EncodeBincode(w *bincode.Writer) {
	w.WriteUint32(tx.Fee)
	w.WriteLen(len(tx.Commands))
	for _, cmd := range tx.Commands {
		writeCommand(w, cmd)
	}
}

// DecodeBincode reads the transaction in canonical field order.
func (tx *Transaction) DecodeBincode(r *bincode.Reader) error {
	var err error
	if tx.Fee, err = r.ReadUint32(); err != nil {
		return err
	}
	n, err := r.ReadLen()
	if err != nil {
		return err
	}
	tx.Commands = make([]Command, n)
	for i := 0; i < n; i++ {
		cmd, err := readCommand(r)
		if err != nil {
			return err
		}
		tx.Commands[i] = cmd
	}
	return nil
}

func (tx *Transaction) String() string {
	return fmt.Sprintf("tx [fee %d, commands %d]", tx.Fee, len(tx.Commands))
}

// Transactions is a sortable list of transactions.
type Transactions []*Transaction

// SerializeTransactions canonically encodes a transaction sequence. Block
// signatures are computed over this encoding.
func SerializeTransactions(txs []*Transaction) []byte {
	w := bincode.NewWriter()
	w.WriteLen(len(txs))
	for _, tx := range txs {
		tx.EncodeBincode(w)
	}
	return w.Bytes()
}
