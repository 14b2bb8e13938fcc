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

// Package bincode implements the canonical binary encoding of the ledger.
//
// Integers use a variable-length encoding: values below 251 occupy a single
// byte; larger values are prefixed with a width marker (251 for uint16, 252
// for uint32, 253 for uint64) followed by the little-endian value of that
// width. Signed integers are zigzag-mapped onto unsigned ones first. Byte
// strings and sequences are length-prefixed, options carry a presence byte,
// and tagged unions a discriminant. Field order always matches the struct
// definition, so encoding is deterministic and encode∘decode is the identity.
package bincode

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrUnexpectedEOF is returned when a value extends past the input.
	ErrUnexpectedEOF = errors.New("bincode: unexpected end of input")
	// ErrTrailingBytes is returned by Deserialize when input remains after
	// the value has been decoded.
	ErrTrailingBytes = errors.New("bincode: trailing bytes after value")
	// ErrInvalidMarker is returned for an unknown integer width marker.
	ErrInvalidMarker = errors.New("bincode: invalid integer width marker")
	// ErrOverflow is returned when a decoded integer does not fit the
	// requested width.
	ErrOverflow = errors.New("bincode: integer overflow")
	// ErrLength is returned for an implausible length prefix.
	ErrLength = errors.New("bincode: implausible length prefix")
)

const (
	marker16 = 251
	marker32 = 252
	marker64 = 253
)

// Encodable is implemented by values that can write themselves to a Writer.
type Encodable interface {
	EncodeBincode(w *Writer)
}

// Decodable is implemented by values that can read themselves from a Reader.
type Decodable interface {
	DecodeBincode(r *Reader) error
}

// Serialize encodes v into a fresh byte slice.
func Serialize(v Encodable) []byte {
	w := NewWriter()
	v.EncodeBincode(w)
	return w.Bytes()
}

// Deserialize decodes b into v, requiring the whole input to be consumed.
func Deserialize(b []byte, v Decodable) error {
	r := NewReader(b)
	if err := v.DecodeBincode(r); err != nil {
		return err
	}
	if r.Remaining() != 0 {
		return ErrTrailingBytes
	}
	return nil
}

// Writer accumulates an encoded value.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 128)}
}

// Bytes returns the encoded value.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteUint writes an unsigned integer in variable-length form.
func (w *Writer) WriteUint(v uint64) {
	switch {
	case v < marker16:
		w.buf = append(w.buf, byte(v))
	case v <= math.MaxUint16:
		w.buf = append(w.buf, marker16, 0, 0)
		binary.LittleEndian.PutUint16(w.buf[len(w.buf)-2:], uint16(v))
	case v <= math.MaxUint32:
		w.buf = append(w.buf, marker32, 0, 0, 0, 0)
		binary.LittleEndian.PutUint32(w.buf[len(w.buf)-4:], uint32(v))
	default:
		w.buf = append(w.buf, marker64, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.LittleEndian.PutUint64(w.buf[len(w.buf)-8:], v)
	}
}

// WriteUint32 writes a 32-bit unsigned integer.
func (w *Writer) WriteUint32(v uint32) { w.WriteUint(uint64(v)) }

// WriteInt writes a signed integer, zigzag-mapped.
func (w *Writer) WriteInt(v int64) {
	w.WriteUint(uint64(v)<<1 ^ uint64(v>>63))
}

// WriteBool writes a boolean presence byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteLen writes a sequence length.
func (w *Writer) WriteLen(n int) { w.WriteUint(uint64(n)) }

// WriteBytes writes a length-prefixed byte string.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteLen(len(b))
	w.buf = append(w.buf, b...)
}

// WriteString writes a length-prefixed string.
func (w *Writer) WriteString(s string) {
	w.WriteLen(len(s))
	w.buf = append(w.buf, s...)
}

// Reader consumes an encoded value.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint reads a variable-length unsigned integer.
func (r *Reader) ReadUint() (uint64, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case marker16:
		raw, err := r.take(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(raw)), nil
	case marker32:
		raw, err := r.take(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(raw)), nil
	case marker64:
		raw, err := r.take(8)
		if err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(raw), nil
	case 254, 255:
		return 0, ErrInvalidMarker
	default:
		return uint64(b), nil
	}
}

// ReadUint32 reads a 32-bit unsigned integer.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrOverflow
	}
	return uint32(v), nil
}

// ReadInt reads a zigzag-mapped signed integer.
func (r *Reader) ReadInt() (int64, error) {
	v, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	return int64(v>>1) ^ -int64(v&1), nil
}

// ReadBool reads a presence byte.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(ErrInvalidMarker, "bool byte %#x", b)
	}
}

// ReadLen reads a sequence length and sanity-checks it against the input size.
func (r *Reader) ReadLen() (int, error) {
	v, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > uint64(r.Remaining()) {
		return 0, ErrLength
	}
	return int(v), nil
}

// ReadBytes reads a length-prefixed byte string into a fresh slice.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadLen()
	if err != nil {
		return nil, err
	}
	raw, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, raw)
	return out, nil
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
