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

package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsDeterministic(t *testing.T) {
	data := []byte("ABRACADABRA!!!")
	first := Hash(data)
	assert.Equal(t, first, Hash(data))
	assert.NotEqual(t, first, Hash([]byte("ABRACADABRA!!?")))
}

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := GenerateKey()
	require.NoError(t, err)

	msg := []byte("block payload")
	sig := Sign(priv, msg)
	assert.True(t, VerifySignature(pub, msg, sig))
	assert.False(t, VerifySignature(pub, []byte("other payload"), sig))
	assert.False(t, VerifySignature(pub, msg, sig[:16]))
	assert.False(t, VerifySignature(pub[:8], msg, sig))
}

func TestLeadingZeroBytes(t *testing.T) {
	assert.Equal(t, 0, LeadingZeroBytes([]byte{1, 0, 0}))
	assert.Equal(t, 2, LeadingZeroBytes([]byte{0, 0, 3}))
	assert.Equal(t, 3, LeadingZeroBytes([]byte{0, 0, 0}))
	assert.Equal(t, 0, LeadingZeroBytes(nil))

	assert.True(t, ValidHash([]byte{0, 0, 9}, 2))
	assert.False(t, ValidHash([]byte{0, 9, 9}, 2))
}
