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
	"github.com/nuts-foundation/nuts-ofagent/events"
	"github.com/spf13/pflag"
)

// ConfEventsEnabled defines whether connection status events are published
const ConfEventsEnabled = "events.enabled"

// ConfEventsQueueSize defines the number of status events that can be pending for publication
const ConfEventsQueueSize = "events.queuesize"

// ConfEventsPort defines the port for the NATS server
const ConfEventsPort = "events.nats.port"

// ConfEventsHostname defines the hostname for the NATS server
const ConfEventsHostname = "events.nats.hostname"

// ConfEventsStorageDir defines the storage directory of the NATS server
const ConfEventsStorageDir = "events.nats.storagedir"

// ConfEventsTimeout defines the timeouts (in seconds) for the NATS server
const ConfEventsTimeout = "events.nats.timeout"

// FlagSet defines the set of flags that sets the events-engine configuration
func FlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("events", pflag.ContinueOnError)

	defs := events.DefaultConfig()
	flags.Bool(ConfEventsEnabled, defs.Enabled, "Whether an embedded NATS server is started, on which controller connection status events are published "+
		"(subject "+events.ConnectionStatusSubject+".<id>).")
	flags.Int(ConfEventsQueueSize, defs.QueueSize, "Number of status events that can be pending for publication. Events are dropped when the queue is full.")
	flags.Int(ConfEventsPort, defs.Nats.Port, "Port where the NATS server listens on")
	flags.String(ConfEventsHostname, defs.Nats.Hostname, "Hostname for the NATS server")
	flags.String(ConfEventsStorageDir, defs.Nats.StorageDir, "Directory where the NATS server stores its JetStream state. If not set, a directory in the OS temp dir is used.")
	flags.Int(ConfEventsTimeout, defs.Nats.Timeout, "Timeout in seconds for NATS server operations")
	return flags
}
