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

package utils

import (
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/ledgerd/go-ledgerd/node"
	"github.com/ledgerd/go-ledgerd/params"
)

var (
	// PortFlag sets the P2P listening port; queries are served on port+10.
	PortFlag = cli.IntFlag{
		Name:  "port",
		Usage: "P2P listening port (the query API listens on port+10)",
		Value: params.DefaultP2PPort,
	}
	PeersFlag = cli.StringFlag{
		Name:  "peers",
		Usage: "Comma separated list of peer addresses, self included",
		Value: strings.Join(params.BootstrapPeers, ","),
	}
	DifficultyFlag = cli.IntFlag{
		Name:  "difficulty",
		Usage: "Required number of leading zero bytes of a block hash",
		Value: params.DefaultDifficulty,
	}
	StrictIDCheckFlag = cli.BoolFlag{
		Name:  "strictid",
		Usage: "Enforce block id linkage on append",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	MetricsEnabledFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection and reporting",
	}
	PrometheusExporterFlag = cli.BoolFlag{
		Name:  "prometheus",
		Usage: "Enable the Prometheus exporter",
	}
	PrometheusExporterPortFlag = cli.IntFlag{
		Name:  "prometheusport",
		Usage: "Prometheus exporter listening port",
		Value: 61001,
	}
)

// SetNodeConfig applies command line values to the node configuration.
func SetNodeConfig(ctx *cli.Context, cfg *node.Config) {
	if ctx.GlobalIsSet(PortFlag.Name) {
		cfg.Port = ctx.GlobalInt(PortFlag.Name)
	}
	if ctx.GlobalIsSet(PeersFlag.Name) {
		cfg.Peers = splitAndTrim(ctx.GlobalString(PeersFlag.Name))
	}
	if ctx.GlobalIsSet(DifficultyFlag.Name) {
		cfg.Difficulty = ctx.GlobalInt(DifficultyFlag.Name)
	}
	if ctx.GlobalBool(StrictIDCheckFlag.Name) {
		cfg.StrictIDCheck = true
	}
}

func splitAndTrim(input string) []string {
	result := strings.Split(input, ",")
	for i, r := range result {
		result[i] = strings.TrimSpace(r)
	}
	return result
}
