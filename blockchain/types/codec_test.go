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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/go-ledgerd/crypto"
	"github.com/ledgerd/go-ledgerd/ser/bincode"
)

func sampleTransaction(fee uint32) *Transaction {
	return &Transaction{
		Fee: fee,
		Commands: []Command{
			&CreateAccount{PublicKey: "pk-test"},
			&AddFunds{AccountID: 3, Value: 700, AssetID: "GOLD"},
			&TransferFunds{AccountFromID: 3, AccountToID: 1, Value: 250, AssetID: "GOLD"},
		},
	}
}

func sampleBlock() *Block {
	prev := make([]byte, 32)
	prev[31] = 0x7f
	b := &Block{
		ID:                3,
		Timestamp:         time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC).Unix(),
		Nonce:             41981,
		Signature:         []byte{1, 2, 3, 4, 5},
		PreviousBlockHash: prev,
		Transactions:      []*Transaction{sampleTransaction(9), sampleTransaction(2)},
	}
	b.Hash = b.CalcHash()
	return b
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := sampleTransaction(77)
	decoded := new(Transaction)
	require.NoError(t, bincode.Deserialize(bincode.Serialize(tx), decoded))
	assert.Equal(t, tx, decoded)
}

func TestBlockRoundTrip(t *testing.T) {
	block := sampleBlock()
	decoded := new(Block)
	require.NoError(t, bincode.Deserialize(bincode.Serialize(block), decoded))
	assert.Equal(t, block, decoded)
}

func TestGenesisBlockRoundTripKeepsAbsentPrevHash(t *testing.T) {
	block := sampleBlock()
	block.PreviousBlockHash = nil
	block.Hash = block.CalcHash()
	decoded := new(Block)
	require.NoError(t, bincode.Deserialize(bincode.Serialize(block), decoded))
	assert.Nil(t, decoded.PreviousBlockHash)
	assert.Equal(t, block, decoded)
}

func TestDataRoundTrip(t *testing.T) {
	peer := Peer("127.0.0.1:1235")
	peers := Peers{"1": "127.0.0.1:1234", "2": "127.0.0.1:1235"}
	chain := Blockchain{sampleBlock()}
	values := []Data{
		sampleBlock(),
		sampleTransaction(5),
		&peer,
		&peers,
		&chain,
	}
	for _, v := range values {
		decoded, err := DeserializeData(SerializeData(v))
		require.NoError(t, err, "kind %d", v.Kind())
		assert.Equal(t, v.Kind(), decoded.Kind())
		assert.Equal(t, v, decoded)
	}
}

func TestDataKindTags(t *testing.T) {
	// The discriminants are part of the wire interface.
	peer := Peer("")
	peers := Peers{}
	chain := Blockchain{}
	assert.Equal(t, DataKind(1), (&Block{}).Kind())
	assert.Equal(t, DataKind(2), (&Transaction{}).Kind())
	assert.Equal(t, DataKind(3), peer.Kind())
	assert.Equal(t, DataKind(4), peers.Kind())
	assert.Equal(t, DataKind(5), chain.Kind())
}

func TestPeersEncodingIsDeterministic(t *testing.T) {
	peers := Peers{"3": "c", "1": "a", "2": "b"}
	first := SerializeData(&peers)
	for i := 0; i < 16; i++ {
		assert.Equal(t, first, SerializeData(&peers))
	}
}

func TestUnknownDataKindRejected(t *testing.T) {
	w := bincode.NewWriter()
	w.WriteUint(9)
	_, err := DeserializeData(w.Bytes())
	assert.Error(t, err)
}

func TestUnknownCommandRejected(t *testing.T) {
	w := bincode.NewWriter()
	w.WriteUint32(7) // fee
	w.WriteLen(1)
	w.WriteUint32(99) // bogus discriminant
	err := bincode.Deserialize(w.Bytes(), new(Transaction))
	assert.Error(t, err)
}

func TestHashDeterminism(t *testing.T) {
	block := sampleBlock()
	first := block.CalcHash()
	for i := 0; i < 8; i++ {
		assert.Equal(t, first, block.CalcHash())
	}
	assert.True(t, block.ValidateHash())

	// The stored hash does not feed back into the seal hash.
	mutated := *block
	mutated.Hash = []byte{0xff}
	assert.Equal(t, first, mutated.CalcHash())
}

func TestValidateHashDetectsTampering(t *testing.T) {
	block := sampleBlock()
	block.Nonce++
	assert.False(t, block.ValidateHash())
}

func TestBlockSignature(t *testing.T) {
	pub, priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	block := sampleBlock()
	block.Signature = crypto.Sign(priv, SerializeTransactions(block.Transactions))
	assert.True(t, block.VerifySignature(pub))

	block.Transactions = block.Transactions[:1]
	assert.False(t, block.VerifySignature(pub))
}
