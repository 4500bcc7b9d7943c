// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package device

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Identity is the stable device id used to partition document writes. It is
// the hardware address as twelve uppercase hex digits.
type Identity string

// ErrNoHardwareAddr is returned when no usable interface address exists.
var ErrNoHardwareAddr = errors.New("no interface with a 6-byte hardware address")

// FromHardwareAddr formats a 6-byte hardware address as an identity.
func FromHardwareAddr(mac net.HardwareAddr) (Identity, error) {
	if len(mac) != 6 {
		return "", fmt.Errorf("hardware address %q: want 6 bytes, got %d",
			mac, len(mac))
	}
	return Identity(strings.ToUpper(fmt.Sprintf("%x", []byte(mac)))), nil
}

// Discover derives the identity from the first non-loopback interface that
// has a 6-byte hardware address, preferring interfaces that are up.
func Discover() (Identity, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	return fromInterfaces(ifaces)
}

func fromInterfaces(ifaces []net.Interface) (Identity, error) {
	var fallback *net.Interface
	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) != 6 {
			continue
		}
		if iface.Flags&net.FlagUp != 0 {
			return FromHardwareAddr(iface.HardwareAddr)
		}
		if fallback == nil {
			fallback = iface
		}
	}
	if fallback != nil {
		return FromHardwareAddr(fallback.HardwareAddr)
	}
	return "", ErrNoHardwareAddr
}

// MAC renders the identity in colon-separated form.
func (id Identity) MAC() string {
	s := string(id)
	if len(s) != 12 {
		return s
	}
	parts := make([]string, 6)
	for i := range parts {
		parts[i] = s[2*i : 2*i+2]
	}
	return strings.Join(parts, ":")
}

func (id Identity) String() string {
	return string(id)
}
