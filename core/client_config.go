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

package core

import (
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const clientAddressFlag = "address"
const clientTimeoutFlag = "timeout"
const defaultClientAddress = "localhost:8080"
const defaultClientTimeout = 10 * time.Second

// ClientConfig has client settings, used by CLI commands that call the HTTP API of a running agent.
type ClientConfig struct {
	Address string        `koanf:"address"`
	Timeout time.Duration `koanf:"timeout"`
}

// NewClientConfig creates a new CLI client config with default values set.
func NewClientConfig() *ClientConfig {
	return &ClientConfig{
		Address: defaultClientAddress,
		Timeout: defaultClientTimeout,
	}
}

// ClientConfigFlags returns the flags for configuring the client config.
func ClientConfigFlags() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("client", pflag.ContinueOnError)
	flagSet.String(clientAddressFlag, defaultClientAddress, "Address of the agent's HTTP interface. Must contain at least host and port, URL scheme may be omitted. In that case 'http://' is prepended.")
	flagSet.Duration(clientTimeoutFlag, defaultClientTimeout, "Client time-out when performing remote operations.")
	return flagSet
}

// NewClientConfigForCommand loads the client config from environment variables and the given flags.
func NewClientConfigForCommand(flags *pflag.FlagSet) (*ClientConfig, error) {
	cfg := NewClientConfig()
	configMap := koanf.New(defaultDelimiter)
	if err := loadDefaultsFromFlagset(configMap, flags); err != nil {
		return nil, err
	}
	if err := loadFromEnv(configMap); err != nil {
		return nil, err
	}
	if err := loadFromFlagSet(configMap, flags); err != nil {
		return nil, err
	}
	if err := configMap.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetAddress normalizes and gets the address of the remote server
func (cfg ClientConfig) GetAddress() string {
	addr := cfg.Address
	if !strings.HasPrefix(addr, "http") {
		addr = "http://" + addr
	}
	return strings.TrimSuffix(addr, "/")
}
