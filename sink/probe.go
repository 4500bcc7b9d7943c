// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sink

import (
	"context"
	"net"
	"net/url"
)

// Resolver looks up host names. *net.Resolver implements it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// ResolveHost checks that the host of a URL (or a bare host, optionally with
// a port) resolves to at least one address. IP literals pass without a
// lookup.
func ResolveHost(ctx context.Context, r Resolver, target string) error {
	host := hostOf(target)
	if host == "" {
		return NewConnectivityError(target, "no host to resolve", nil)
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if r == nil {
		r = net.DefaultResolver
	}

	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return NewConnectivityError(host, "name resolution failed", err)
	}
	if len(addrs) == 0 {
		return NewConnectivityError(host, "name resolved to no addresses", nil)
	}
	return nil
}

func hostOf(target string) string {
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		return u.Hostname()
	}
	if h, _, err := net.SplitHostPort(target); err == nil {
		return h
	}
	return target
}
