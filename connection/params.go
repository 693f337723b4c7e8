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

package connection

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/nuts-foundation/nuts-ofagent/core"
)

// DefaultPort is the IANA assigned OpenFlow port, used when a controller address doesn't specify one.
const DefaultPort = 6653

// ProtocolParams identifies the transport and endpoint of a controller. The implementations are TCPOverIPv4 and TCPOverIPv6.
type ProtocolParams interface {
	// Endpoint returns the canonical form of the endpoint, used to detect duplicate controllers.
	Endpoint() string
	// Network returns the network to dial.
	Network() string
	// DialAddress returns the address to dial.
	DialAddress() string
	// validate checks whether the parameters can be used to connect.
	validate() error
}

// TCPOverIPv4 specifies a controller reachable over TCP on an IPv4 address.
type TCPOverIPv4 struct {
	Address netip.Addr
	Port    uint16
}

func (p TCPOverIPv4) Endpoint() string {
	return "tcp4://" + p.DialAddress()
}

func (p TCPOverIPv4) Network() string {
	return "tcp4"
}

func (p TCPOverIPv4) DialAddress() string {
	return netip.AddrPortFrom(p.Address, p.Port).String()
}

func (p TCPOverIPv4) String() string {
	return p.Endpoint()
}

func (p TCPOverIPv4) validate() error {
	if !p.Address.Is4() {
		return fmt.Errorf("not an IPv4 address: %s", p.Address)
	}
	if p.Port == 0 {
		return errors.New("port must not be 0")
	}
	return nil
}

// TCPOverIPv6 specifies a controller reachable over TCP on an IPv6 address.
// Zone is the interface through which a link-local address is reached; it's required for link-local addresses.
type TCPOverIPv6 struct {
	Address netip.Addr
	Port    uint16
	Zone    string
}

func (p TCPOverIPv6) Endpoint() string {
	return "tcp6://" + p.DialAddress()
}

func (p TCPOverIPv6) Network() string {
	return "tcp6"
}

func (p TCPOverIPv6) DialAddress() string {
	return netip.AddrPortFrom(p.Address.WithZone(p.Zone), p.Port).String()
}

func (p TCPOverIPv6) String() string {
	return p.Endpoint()
}

func (p TCPOverIPv6) validate() error {
	if !p.Address.Is6() || p.Address.Is4In6() {
		return fmt.Errorf("not an IPv6 address: %s", p.Address)
	}
	if p.Address.Zone() != "" {
		return fmt.Errorf("zone must be specified in Zone, not in the address: %s", p.Address)
	}
	if p.Address.IsLinkLocalUnicast() && p.Zone == "" {
		return fmt.Errorf("link-local address requires a zone: %s", p.Address)
	}
	if p.Port == 0 {
		return errors.New("port must not be 0")
	}
	return nil
}

// ParseControllerAddress parses a controller address into ProtocolParams. Supported forms are:
// tcp4://1.2.3.4:6653, tcp6://[fe80::1%eth0]:6653, tcp://[2001:db8::1]:6653 and the same without scheme.
// When the port is omitted, DefaultPort is used.
func ParseControllerAddress(address string) (ProtocolParams, error) {
	scheme := ""
	rest := strings.TrimSpace(address)
	if idx := strings.Index(rest, "://"); idx >= 0 {
		scheme = rest[:idx]
		rest = rest[idx+3:]
	}
	addrPort, err := parseAddrPort(rest)
	if err != nil {
		return nil, core.WrapErrorf(ErrInvalidConfig, "invalid controller address (address=%s): %w", address, err)
	}
	addr := addrPort.Addr()
	zone := addr.Zone()
	addr = addr.WithZone("")
	if addr.Is4In6() {
		addr = addr.Unmap()
	}

	switch scheme {
	case "", "tcp", "tcp4", "tcp6":
	default:
		return nil, core.WrapErrorf(ErrInvalidConfig, "unsupported scheme (address=%s): %s", address, scheme)
	}
	var result ProtocolParams
	if scheme == "tcp4" || (scheme != "tcp6" && addr.Is4()) {
		result = TCPOverIPv4{Address: addr, Port: addrPort.Port()}
	} else {
		result = TCPOverIPv6{Address: addr, Port: addrPort.Port(), Zone: zone}
	}
	if err := result.validate(); err != nil {
		return nil, core.WrapErrorf(ErrInvalidConfig, "invalid controller address (address=%s): %w", address, err)
	}
	return result, nil
}

func parseAddrPort(s string) (netip.AddrPort, error) {
	if addrPort, err := netip.ParseAddrPort(s); err == nil {
		return addrPort, nil
	}
	addr, err := netip.ParseAddr(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	if err != nil {
		return netip.AddrPort{}, err
	}
	return netip.AddrPortFrom(addr, DefaultPort), nil
}
