package client

import (
	"net"
	"strings"
)

// ResolveEndpoint picks local when host is a loopback address and remote
// otherwise. host may include a port.
func ResolveEndpoint(host, local, remote string) string {
	if IsLoopback(host) {
		return local
	}
	return remote
}

// IsLoopback reports whether host names the local machine.
func IsLoopback(host string) bool {
	h := strings.TrimSpace(host)
	if hostOnly, _, err := net.SplitHostPort(h); err == nil {
		h = hostOnly
	}
	h = strings.Trim(h, "[]")

	if strings.EqualFold(h, "localhost") {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
