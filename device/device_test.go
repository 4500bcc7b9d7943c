// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package device

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromHardwareAddr(t *testing.T) {
	id, err := FromHardwareAddr(net.HardwareAddr{0x24, 0x6f, 0x28, 0xab, 0x0c, 0x01})
	require.NoError(t, err)
	require.Equal(t, Identity("246F28AB0C01"), id)
	require.Equal(t, "24:6F:28:AB:0C:01", id.MAC())

	_, err = FromHardwareAddr(net.HardwareAddr{1, 2, 3})
	require.Error(t, err)
}

func TestFromInterfaces(t *testing.T) {
	lo := net.Interface{
		Name:         "lo",
		Flags:        net.FlagUp | net.FlagLoopback,
		HardwareAddr: net.HardwareAddr{0, 0, 0, 0, 0, 1},
	}
	down := net.Interface{
		Name:         "eth0",
		HardwareAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0x01},
	}
	up := net.Interface{
		Name:         "wlan0",
		Flags:        net.FlagUp,
		HardwareAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0x02},
	}

	id, err := fromInterfaces([]net.Interface{lo, down, up})
	require.NoError(t, err)
	require.Equal(t, Identity("AABBCCDDEE02"), id)

	id, err = fromInterfaces([]net.Interface{lo, down})
	require.NoError(t, err)
	require.Equal(t, Identity("AABBCCDDEE01"), id)

	_, err = fromInterfaces([]net.Interface{lo})
	require.ErrorIs(t, err, ErrNoHardwareAddr)
}

const procWireless = `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
 wlan0: 0000   54.  -56.  -256        0      0      0      0     12        0
`

func TestParseWireless(t *testing.T) {
	level, err := parseWireless(strings.NewReader(procWireless), "wlan0")
	require.NoError(t, err)
	require.Equal(t, -56, level)

	_, err = parseWireless(strings.NewReader(procWireless), "wlan1")
	require.Error(t, err)
}
