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
	"fmt"
	"runtime"

	"gopkg.in/urfave/cli.v1"

	"github.com/ledgerd/go-ledgerd/params"
)

// VersionCommand prints version numbers.
var VersionCommand = cli.Command{
	Action:    version,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Category:  "MISCELLANEOUS COMMANDS",
}

func version(ctx *cli.Context) error {
	fmt.Println(clientIdentifier)
	fmt.Println("Version:", params.VersionWithCommit(gitCommit))
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	return nil
}
