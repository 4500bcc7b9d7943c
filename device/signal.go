// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package device

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WirelessSignal reads the signal level (dBm) of a wireless interface from
// /proc/net/wireless. It reports false when the interface is not listed.
func WirelessSignal(iface string) (int, bool) {
	f, err := os.Open("/proc/net/wireless")
	if err != nil {
		return 0, false
	}
	defer f.Close()
	level, err := parseWireless(f, iface)
	return level, err == nil
}

// parseWireless extracts the level column, for example:
//
//	Inter-| sta-|   Quality        |   Discarded packets
//	 face | tus | link level noise |  nwid  crypt   frag
//	 wlan0: 0000   54.  -56.  -256        0      0      0
func parseWireless(r io.Reader, iface string) (int, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(name) != iface {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return 0, fmt.Errorf("short wireless entry for %s", iface)
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0, fmt.Errorf("wireless level for %s: %w", iface, err)
		}
		return int(level), nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("interface %s not found", iface)
}
