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

package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/urfave/cli.v1"

	"github.com/ledgerd/go-ledgerd/cmd/utils"
	"github.com/ledgerd/go-ledgerd/cmd/utils/nodecmd"
	"github.com/ledgerd/go-ledgerd/log"
	"github.com/ledgerd/go-ledgerd/metrics"
	prometheusmetrics "github.com/ledgerd/go-ledgerd/metrics/prometheus"
)

var (
	logger = log.NewModuleLogger(log.CMDLCN)

	// The app that holds all commands and flags.
	app = utils.NewApp(nodecmd.GetGitCommit(), "The command line interface for a ledger node")

	// flags that configure the node
	nodeFlags = []cli.Flag{
		utils.PortFlag,
		utils.PeersFlag,
		utils.DifficultyFlag,
		utils.StrictIDCheckFlag,
		utils.VerbosityFlag,
		utils.MetricsEnabledFlag,
		utils.PrometheusExporterFlag,
		utils.PrometheusExporterPortFlag,
		nodecmd.ConfigFileFlag,
	}
)

func init() {
	app.Action = nodecmd.RunLedgerNode
	app.HideVersion = true // we have a command to print the version
	app.ArgsUsage = "[port]"
	app.Commands = []cli.Command{
		// See cmd/utils/nodecmd/versioncmd.go:
		nodecmd.VersionCommand,

		// See cmd/utils/nodecmd/dumpconfigcmd.go:
		nodecmd.GetDumpConfigCommand(nodeFlags),
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = append(app.Flags, nodeFlags...)

	app.Before = func(ctx *cli.Context) error {
		runtime.GOMAXPROCS(runtime.NumCPU())
		log.ChangeGlobalLogLevel(log.Lvl(ctx.GlobalInt(utils.VerbosityFlag.Name)))

		metrics.Enabled = ctx.GlobalBool(utils.MetricsEnabledFlag.Name)
		metrics.EnabledPrometheusExport = ctx.GlobalBool(utils.PrometheusExporterFlag.Name)
		if metrics.Enabled {
			logger.Info("Enabling metrics collection")
			if metrics.EnabledPrometheusExport {
				logger.Info("Enabling Prometheus Exporter")
				pClient := prometheusmetrics.NewPrometheusProvider(metrics.DefaultRegistry, "ledgerd",
					"", prometheus.DefaultRegisterer, 3*time.Second)
				go pClient.UpdatePrometheusMetrics()
				http.Handle("/metrics", promhttp.Handler())
				port := ctx.GlobalInt(utils.PrometheusExporterPortFlag.Name)

				go func() {
					err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
					if err != nil {
						logger.Error("PrometheusExporter starting failed:", "port", port, "err", err)
					}
				}()
			}
		}

		// Start system runtime metrics collection
		go metrics.CollectProcessMetrics(3 * time.Second)

		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
