/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/connection"
	v1 "github.com/nuts-foundation/nuts-ofagent/connection/api/v1"
	connectionCmd "github.com/nuts-foundation/nuts-ofagent/connection/cmd"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/events"
	eventsCmd "github.com/nuts-foundation/nuts-ofagent/events/cmd"
	"github.com/nuts-foundation/nuts-ofagent/socket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const httpShutdownTimeout = 5 * time.Second

var stdOutWriter io.Writer = os.Stdout

// Allows overriding the Echo server implementation to aid testing
var echoCreator = core.NewEchoServer

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ofagent",
		Short: "OpenFlow agent which connects a switch to its controllers. It runs the agent server or administers a remote agent.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
		SilenceUsage: true,
	}
}

func createPrintConfigCommand(system *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the current config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Current system config")
			fmt.Fprintln(cmd.OutOrStdout(), system.Config.PrintConfig())
			return nil
		},
	}
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version of the agent",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), core.BuildInfo())
		},
	}
}

func createStatusCommand() *cobra.Command {
	result := &cobra.Command{
		Use:   "status",
		Short: "Shows the diagnostics of a running agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := core.NewClientConfigForCommand(cmd.Flags())
			if err != nil {
				return err
			}
			request, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, config.GetAddress()+"/status/diagnostics", nil)
			if err != nil {
				return err
			}
			response, err := core.CreateHTTPClient(*config).Do(request)
			if err != nil {
				return err
			}
			defer response.Body.Close()
			if err := core.TestResponseCode(http.StatusOK, response); err != nil {
				return err
			}
			_, err = io.Copy(cmd.OutOrStdout(), response.Body)
			return err
		},
	}
	result.Flags().AddFlagSet(core.ClientConfigFlags())
	return result
}

func createServerCommand(system *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Starts the agent and connects to the configured controllers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			logrus.Info("Starting agent with config:")
			logrus.Info(system.Config.PrintConfig())

			// check config on all engines
			if err := system.Configure(); err != nil {
				return err
			}

			// start engines
			if err := system.Start(); err != nil {
				_ = system.Shutdown()
				return err
			}
			defer func() {
				if err := system.Shutdown(); err != nil {
					logrus.WithError(err).Error("Error shutting down agent")
				}
			}()

			// start interfaces
			if address := system.Config.HTTP.Address; address != "" {
				echoServer := echoCreator(system.Routers)
				core.StartEchoServer(echoServer, address)
				logrus.Infof("HTTP interface listening on %s", address)
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
					defer cancel()
					if err := echoServer.Shutdown(ctx); err != nil {
						logrus.WithError(err).Error("Error shutting down HTTP interface")
					}
				}()
			}

			<-cmd.Context().Done()
			logrus.Info("Shutting down agent")
			return nil
		},
	}
}

// CreateCommand creates the command with all subcommands to run the system.
func CreateCommand(system *core.System) *cobra.Command {
	command := createRootCommand()
	command.SetOut(stdOutWriter)
	addSubCommands(system, command)
	return command
}

// CreateSystem creates the system and registers all default engines.
func CreateSystem() *core.System {
	system := core.NewSystem()
	// Create instances
	statusEngine := core.NewStatusEngine(system)
	metricsEngine := core.NewMetricsEngine()
	loop := socket.NewLoop()
	connectionModule := connection.NewModule(loop)
	eventManager := events.NewManager(connectionModule)

	// Register HTTP routes
	system.RegisterRoutes(statusEngine.(core.Routable))
	system.RegisterRoutes(metricsEngine.(core.Routable))
	system.RegisterRoutes(&v1.Wrapper{Service: connectionModule})

	// Register engines
	system.RegisterEngine(statusEngine)
	system.RegisterEngine(metricsEngine)
	system.RegisterEngine(loop)
	// events observe connections from their start, and publish the final statuses on shutdown
	system.RegisterEngine(eventManager)
	system.RegisterEngine(connectionModule)
	return system
}

// Execute executes the root command. The server command runs until the given context is cancelled.
func Execute(ctx context.Context, system *core.System) error {
	return CreateCommand(system).ExecuteContext(ctx)
}

func addSubCommands(system *core.System, root *cobra.Command) {
	clientCommands := []*cobra.Command{
		connectionCmd.Cmd(),
	}
	clientFlags := core.ClientConfigFlags()
	for _, clientCommand := range clientCommands {
		clientCommand.PersistentFlags().AddFlagSet(clientFlags)
		root.AddCommand(clientCommand)
	}

	serverFlags := serverFlagSet()
	serverCommand := createServerCommand(system)
	serverCommand.Flags().AddFlagSet(serverFlags)
	printConfigCommand := createPrintConfigCommand(system)
	printConfigCommand.Flags().AddFlagSet(serverFlags)
	root.AddCommand(serverCommand, printConfigCommand, createStatusCommand(), createVersionCommand())
}

// serverFlagSet returns the flags of the server and all its engines.
func serverFlagSet() *pflag.FlagSet {
	result := pflag.NewFlagSet("server", pflag.ContinueOnError)
	result.AddFlagSet(core.FlagSet())
	result.AddFlagSet(socket.FlagSet())
	result.AddFlagSet(connectionCmd.FlagSet())
	result.AddFlagSet(eventsCmd.FlagSet())
	return result
}
