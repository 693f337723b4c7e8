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
	"fmt"
	"strconv"

	"github.com/nuts-foundation/nuts-ofagent/connection"
	v1 "github.com/nuts-foundation/nuts-ofagent/connection/api/v1"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagSet contains flags relevant for the connection manager.
func FlagSet() *pflag.FlagSet {
	defs := connection.DefaultConfig()
	flagSet := pflag.NewFlagSet("cxn", pflag.ContinueOnError)
	flagSet.Bool("cxn.enabled", defs.Enabled, "Whether connections to controllers are made when the agent starts. "+
		"If `false`, connections must be enabled through the API.")
	flagSet.StringSlice("cxn.controllers", defs.Controllers, "Comma-separated list of controller addresses (`[tcp://]<ip>[:<port>]`) "+
		"that are added when the agent starts. IPv6 addresses must be enclosed in brackets, link-local IPv6 addresses require a zone (e.g. `[fe80::1%eth0]:6653`). "+
		fmt.Sprintf("The port defaults to %d.", connection.DefaultPort))
	flagSet.Int("cxn.version", defs.Version, "OpenFlow wire version announced to controllers (1 = 1.0, 4 = 1.3, 6 = 1.5). Controllers must support it.")
	flagSet.Int("cxn.maxconnections", defs.MaxConnections, "Maximum number of controllers.")
	flagSet.Duration("cxn.tickinterval", defs.TickInterval, "Interval at which timeouts, keepalives and reconnects are checked.")
	flagSet.Duration("cxn.connecttimeout", defs.ConnectTimeout, "Maximum duration of connecting to a controller.")
	flagSet.Duration("cxn.handshaketimeout", defs.HandshakeTimeout, "Maximum duration between connecting and receiving the controller's HELLO.")
	flagSet.Duration("cxn.keepalive.interval", defs.Keepalive.Interval, "Period of inactivity after which an echo request is sent to a controller. 0 disables the keepalive.")
	flagSet.Duration("cxn.keepalive.timeout", defs.Keepalive.Timeout, "Time a controller gets to reply to an echo request before the connection is considered failed.")
	flagSet.Duration("cxn.backoff.min", defs.Backoff.Min, "Minimum delay before reconnecting to a controller after a failure.")
	flagSet.Duration("cxn.backoff.max", defs.Backoff.Max, "Maximum delay before reconnecting to a controller after a failure.")
	flagSet.Int("cxn.maxoutboundqueue", defs.MaxOutboundQueue, "Maximum number of messages queued for sending, per controller.")
	flagSet.Int("cxn.maxconnectspertick", defs.MaxConnectsPerTick, "Maximum number of reconnects started per tick.")
	flagSet.Float64("cxn.connectrate", defs.ConnectRate, "Maximum number of reconnects per second, across all controllers.")
	flagSet.Int("cxn.maxflushbytes", defs.MaxFlushBytes, "Maximum number of bytes written to a controller connection at once.")
	return flagSet
}

// Cmd contains sub-commands for the remote client
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "controller",
		Short: "controller connection commands",
	}
	cmd.AddCommand(listCommand())
	cmd.AddCommand(addCommand())
	cmd.AddCommand(removeCommand())
	cmd.AddCommand(enableCommand(true))
	cmd.AddCommand(enableCommand(false))
	cmd.AddCommand(statusCommand())
	return cmd
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the controllers and the state of their connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := httpClient(cmd.Flags())
			if err != nil {
				return err
			}
			controllers, err := client.ListControllers()
			if err != nil {
				return err
			}
			const format = "%-4s %-40s %-8s %-12s %s\n"
			fmt.Fprintf(cmd.OutOrStdout(), format, "ID", "Endpoint", "Version", "State", "Status")
			for _, controller := range controllers {
				fmt.Fprintf(cmd.OutOrStdout(), format, strconv.Itoa(controller.ID), controller.Endpoint, controller.Version, controller.State, controller.Status)
			}
			return nil
		},
	}
}

func addCommand() *cobra.Command {
	var version int
	result := &cobra.Command{
		Use:   "add [address]",
		Short: "Adds a controller",
		Long:  "Adds a controller. The address has the form [tcp://]<ip>[:<port>], IPv6 addresses must be enclosed in brackets.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := httpClient(cmd.Flags())
			if err != nil {
				return err
			}
			controller, err := client.AddController(args[0], version)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added controller %s (ID=%d)\n", controller.Endpoint, controller.ID)
			return nil
		},
	}
	result.Flags().IntVar(&version, "version", 0, "OpenFlow wire version to use for this controller. If not set, the agent's configured version is used.")
	return result
}

func removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id]",
		Short: "Removes a controller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid connection ID: %s", args[0])
			}
			client, err := httpClient(cmd.Flags())
			if err != nil {
				return err
			}
			if err := client.RemoveController(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed controller (ID=%d)\n", id)
			return nil
		},
	}
}

func enableCommand(enable bool) *cobra.Command {
	use, short := "enable", "Enables connections to controllers"
	if !enable {
		use, short = "disable", "Disables and closes all connections to controllers"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := httpClient(cmd.Flags())
			if err != nil {
				return err
			}
			if err := client.SetEnabled(enable); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Controller connections enabled: %t\n", enable)
			return nil
		},
	}
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Shows whether connections to controllers are enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := httpClient(cmd.Flags())
			if err != nil {
				return err
			}
			enabled, err := client.IsEnabled()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Controller connections enabled: %t\n", enabled)
			return nil
		},
	}
}

// httpClient creates a remote client
func httpClient(set *pflag.FlagSet) (v1.HTTPClient, error) {
	config, err := core.NewClientConfigForCommand(set)
	if err != nil {
		return v1.HTTPClient{}, err
	}
	return v1.HTTPClient{ClientConfig: *config}, nil
}
