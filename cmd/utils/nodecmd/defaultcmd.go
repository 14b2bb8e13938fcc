// Copyright 2019 The go-ledgerd Authors
// This file is part of go-ledgerd.
//
// go-ledgerd is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ledgerd is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ledgerd. If not, see <http://www.gnu.org/licenses/>.

package nodecmd

import (
	"strconv"

	"gopkg.in/urfave/cli.v1"

	"github.com/ledgerd/go-ledgerd/cmd/utils"
	"github.com/ledgerd/go-ledgerd/node"
)

const clientIdentifier = "ledgerd" // Client identifier to advertise over the network

var gitCommit = ""

// GetGitCommit returns the commit baked in at build time, if any.
func GetGitCommit() string { return gitCommit }

// RunLedgerNode is the main entry point into the system if no special
// subcommand is ran. It creates a default node based on the command line
// arguments and runs it in blocking mode, waiting for it to be shut down.
func RunLedgerNode(ctx *cli.Context) error {
	stack := MakeFullNode(ctx)
	utils.StartNode(stack)
	stack.Wait()
	return nil
}

// MakeFullNode assembles a node from defaults, config file and flags. A bare
// positional argument is accepted as the listening port.
func MakeFullNode(ctx *cli.Context) *node.Node {
	stack, _ := makeConfigNode(ctx)
	return stack
}

// applyPortArg interprets a single positional argument as the P2P port.
func applyPortArg(ctx *cli.Context, cfg *node.Config) {
	if ctx.NArg() == 0 {
		return
	}
	port, err := strconv.Atoi(ctx.Args().First())
	if err != nil || port <= 0 || port > 65535 {
		utils.Fatalf("Invalid port argument: %q", ctx.Args().First())
	}
	cfg.Port = port
}
