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

	"github.com/pkg/errors"

	"github.com/ledgerd/go-ledgerd/ser/bincode"
)

// CommandType is the discriminant of the command union, in declaration order.
type CommandType uint32

const (
	CmdCreateAccount CommandType = iota
	CmdAddFunds
	CmdTransferFunds
)

// ErrUnknownCommand is returned when decoding hits an unknown discriminant.
var ErrUnknownCommand = errors.New("types: unknown command discriminant")

// Command is one ledger mutation carried inside a transaction.
type Command interface {
	Type() CommandType
	encodePayload(w *bincode.Writer)
	decodePayload(r *bincode.Reader) error
}

// CreateAccount appends a new account; its id is assigned at execution time.
type CreateAccount struct {
	PublicKey string
}

// AddFunds credits an asset of an account, creating the asset when absent.
type AddFunds struct {
	AccountID uint32
	Value     uint32
	AssetID   string
}

// TransferFunds moves value between the same asset of two accounts.
type TransferFunds struct {
	AccountFromID uint32
	AccountToID   uint32
	Value         uint32
	AssetID       string
}

func (c *CreateAccount) Type() CommandType { return CmdCreateAccount }
func (c *AddFunds) Type() CommandType      { return CmdAddFunds }
func (c *TransferFunds) Type() CommandType { return CmdTransferFunds }

func (c *CreateAccount) encodePayload(w *bincode.Writer) {
	w.WriteString(c.PublicKey)
}

func (c *CreateAccount) decodePayload(r *bincode.Reader) (err error) {
	c.PublicKey, err = r.ReadString()
	return err
}

func (c *AddFunds) encodePayload(w *bincode.Writer) {
	w.WriteUint32(c.AccountID)
	w.WriteUint32(c.Value)
	w.WriteString(c.AssetID)
}

func (c *AddFunds) decodePayload(r *bincode.Reader) (err error) {
	if c.AccountID, err = r.ReadUint32(); err != nil {
		return err
	}
	if c.Value, err = r.ReadUint32(); err != nil {
		return err
	}
	c.AssetID, err = r.ReadString()
	return err
}

func (c *TransferFunds) encodePayload(w *bincode.Writer) {
	w.WriteUint32(c.AccountFromID)
	w.WriteUint32(c.AccountToID)
	w.WriteUint32(c.Value)
	w.WriteString(c.AssetID)
}

func (c *TransferFunds) decodePayload(r *bincode.Reader) (err error) {
	if c.AccountFromID, err = r.ReadUint32(); err != nil {
		return err
	}
	if c.AccountToID, err = r.ReadUint32(); err != nil {
		return err
	}
	if c.Value, err = r.ReadUint32(); err != nil {
		return err
	}
	c.AssetID, err = r.ReadString()
	return err
}

func (c *CreateAccount) String() string {
	return fmt.Sprintf("CreateAccount{%s}", c.PublicKey)
}

func (c *AddFunds) String() string {
	return fmt.Sprintf("AddFunds{account %d, value %d, asset %s}", c.AccountID, c.Value, c.AssetID)
}

func (c *TransferFunds) String() string {
	return fmt.Sprintf("TransferFunds{%d -> %d, value %d, asset %s}",
		c.AccountFromID, c.AccountToID, c.Value, c.AssetID)
}

func writeCommand(w *bincode.Writer, cmd Command) {
	w.WriteUint32(uint32(cmd.Type()))
	cmd.encodePayload(w)
}

func readCommand(r *bincode.Reader) (Command, error) {
	tag, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	var cmd Command
	switch CommandType(tag) {
	case CmdCreateAccount:
		cmd = new(CreateAccount)
	case CmdAddFunds:
		cmd = new(AddFunds)
	case CmdTransferFunds:
		cmd = new(TransferFunds)
	default:
		return nil, errors.Wrapf(ErrUnknownCommand, "discriminant %d", tag)
	}
	if err := cmd.decodePayload(r); err != nil {
		return nil, err
	}
	return cmd, nil
}
