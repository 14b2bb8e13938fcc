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

package bincode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 250, 251, 255, 256, math.MaxUint16, math.MaxUint16 + 1,
		math.MaxUint32, math.MaxUint32 + 1, math.MaxUint64}
	for _, v := range values {
		w := NewWriter()
		w.WriteUint(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadUint()
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, v, got)
		assert.Equal(t, 0, r.Remaining())
	}
}

func TestUintWidths(t *testing.T) {
	tests := []struct {
		value uint64
		size  int
	}{
		{0, 1},
		{250, 1},
		{251, 3},
		{math.MaxUint16, 3},
		{math.MaxUint16 + 1, 5},
		{math.MaxUint32, 5},
		{math.MaxUint32 + 1, 9},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteUint(tt.value)
		assert.Equal(t, tt.size, len(w.Bytes()), "value %d", tt.value)
	}
}

func TestIntRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 1<<31 - 1, -(1 << 31), math.MaxInt64, math.MinInt64}
	for _, v := range values {
		w := NewWriter()
		w.WriteInt(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadInt()
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, v, got)
	}
}

func TestBytesAndStrings(t *testing.T) {
	w := NewWriter()
	w.WriteBytes([]byte{0xde, 0xad})
	w.WriteString("ledger")
	w.WriteBytes(nil)
	w.WriteBool(true)
	w.WriteBool(false)

	r := NewReader(w.Bytes())
	b, err := r.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, b)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "ledger", s)
	b, err = r.ReadBytes()
	require.NoError(t, err)
	assert.Len(t, b, 0)
	v, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, v)
	v, err = r.ReadBool()
	require.NoError(t, err)
	assert.False(t, v)
	assert.Equal(t, 0, r.Remaining())
}

func TestReadErrors(t *testing.T) {
	_, err := NewReader(nil).ReadUint()
	assert.Equal(t, ErrUnexpectedEOF, err)

	// Length prefix larger than the remaining input.
	w := NewWriter()
	w.WriteUint(100)
	_, err = NewReader(w.Bytes()).ReadBytes()
	assert.Equal(t, ErrLength, err)

	// Truncated wide integer.
	_, err = NewReader([]byte{252, 1, 2}).ReadUint()
	assert.Equal(t, ErrUnexpectedEOF, err)

	// Reserved markers.
	_, err = NewReader([]byte{254}).ReadUint()
	assert.Equal(t, ErrInvalidMarker, err)
}

type testPayload struct {
	n uint64
}

func (p *testPayload) EncodeBincode(w *Writer) { w.WriteUint(p.n) }

func (p *testPayload) DecodeBincode(r *Reader) error {
	var err error
	p.n, err = r.ReadUint()
	return err
}

func TestDeserializeRejectsTrailingBytes(t *testing.T) {
	raw := append(Serialize(&testPayload{n: 7}), 0x00)
	err := Deserialize(raw, new(testPayload))
	assert.Equal(t, ErrTrailingBytes, err)
}
