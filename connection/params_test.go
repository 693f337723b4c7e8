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
	"net/netip"
	"testing"

	"github.com/nuts-foundation/nuts-ofagent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseControllerAddress(t *testing.T) {
	testCases := []struct {
		address  string
		expected ProtocolParams
	}{
		{"tcp4://10.0.0.1:6633", TCPOverIPv4{Address: netip.MustParseAddr("10.0.0.1"), Port: 6633}},
		{"tcp://10.0.0.1:6633", TCPOverIPv4{Address: netip.MustParseAddr("10.0.0.1"), Port: 6633}},
		{"10.0.0.1:6633", TCPOverIPv4{Address: netip.MustParseAddr("10.0.0.1"), Port: 6633}},
		{"10.0.0.1", TCPOverIPv4{Address: netip.MustParseAddr("10.0.0.1"), Port: DefaultPort}},
		{" 10.0.0.1 ", TCPOverIPv4{Address: netip.MustParseAddr("10.0.0.1"), Port: DefaultPort}},
		{"tcp6://[2001:db8::1]:6633", TCPOverIPv6{Address: netip.MustParseAddr("2001:db8::1"), Port: 6633}},
		{"[2001:db8::1]:6633", TCPOverIPv6{Address: netip.MustParseAddr("2001:db8::1"), Port: 6633}},
		{"[2001:db8::1]", TCPOverIPv6{Address: netip.MustParseAddr("2001:db8::1"), Port: DefaultPort}},
		{"2001:db8::1", TCPOverIPv6{Address: netip.MustParseAddr("2001:db8::1"), Port: DefaultPort}},
		{"tcp6://[fe80::1%eth0]:6633", TCPOverIPv6{Address: netip.MustParseAddr("fe80::1"), Port: 6633, Zone: "eth0"}},
		{"[::ffff:10.0.0.1]:6633", TCPOverIPv4{Address: netip.MustParseAddr("10.0.0.1"), Port: 6633}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.address, func(t *testing.T) {
			actual, err := ParseControllerAddress(testCase.address)

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, actual)
		})
	}

	invalid := []string{
		"",
		"controller.example.com:6633",
		"udp://10.0.0.1:6633",
		"tcp4://[2001:db8::1]:6633",
		"tcp6://10.0.0.1:6633",
		"10.0.0.1:0",
		"[fe80::1]:6633",
		"10.0.0.1:99999",
	}
	for _, address := range invalid {
		t.Run("invalid "+address, func(t *testing.T) {
			_, err := ParseControllerAddress(address)

			test.AssertIsError(t, err, ErrInvalidConfig)
		})
	}
}

func TestProtocolParams_Endpoint(t *testing.T) {
	v4 := TCPOverIPv4{Address: netip.MustParseAddr("10.0.0.1"), Port: 6653}
	v6 := TCPOverIPv6{Address: netip.MustParseAddr("fe80::1"), Port: 6653, Zone: "eth0"}

	assert.Equal(t, "tcp4://10.0.0.1:6653", v4.Endpoint())
	assert.Equal(t, "tcp4", v4.Network())
	assert.Equal(t, "10.0.0.1:6653", v4.DialAddress())
	assert.Equal(t, "tcp6://[fe80::1%eth0]:6653", v6.Endpoint())
	assert.Equal(t, "tcp6", v6.Network())
	assert.Equal(t, "[fe80::1%eth0]:6653", v6.DialAddress())
	assert.NotEqual(t, v6.Endpoint(), TCPOverIPv6{Address: v6.Address, Port: v6.Port, Zone: "eth1"}.Endpoint())
}

func TestTCPOverIPv6_validate(t *testing.T) {
	t.Run("zone in address", func(t *testing.T) {
		params := TCPOverIPv6{Address: netip.MustParseAddr("fe80::1%eth0"), Port: 6653}

		assert.EqualError(t, params.validate(), "zone must be specified in Zone, not in the address: fe80::1%eth0")
	})
	t.Run("IPv4 mapped", func(t *testing.T) {
		params := TCPOverIPv6{Address: netip.MustParseAddr("::ffff:10.0.0.1"), Port: 6653}

		assert.Error(t, params.validate())
	})
	t.Run("global address without zone", func(t *testing.T) {
		params := TCPOverIPv6{Address: netip.MustParseAddr("2001:db8::1"), Port: 6653}

		assert.NoError(t, params.validate())
	})
}
