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

// Package crypto wraps the hashing and signing primitives of the node: block
// identity is a SHA-256 digest, block signatures are ed25519.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/ed25519"

	"github.com/ledgerd/go-ledgerd/common"
)

// Hash computes the SHA-256 digest of data.
func Hash(data []byte) common.Hash {
	return sha256.Sum256(data)
}

// GenerateKey creates a fresh ed25519 signing key pair.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// Sign signs data with the given private key.
func Sign(priv ed25519.PrivateKey, data []byte) []byte {
	return ed25519.Sign(priv, data)
}

// VerifySignature reports whether sig is a valid signature of data by pub.
func VerifySignature(pub ed25519.PublicKey, data, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}

// LeadingZeroBytes counts the zero bytes prefixing h. The proof-of-work
// difficulty predicate compares this count against the target.
func LeadingZeroBytes(h []byte) int {
	n := 0
	for _, b := range h {
		if b != 0 {
			break
		}
		n++
	}
	return n
}

// ValidHash reports whether h satisfies the difficulty target.
func ValidHash(h []byte, difficulty int) bool {
	return LeadingZeroBytes(h) >= difficulty
}
