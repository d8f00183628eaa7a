package net

import (
	"fmt"
	"net"
	"strings"

	"AnimBoard/internal/logging"
)

// OutgoingIP finds the local IPv4 address other machines on the LAN can
// reach. It prefers the address of the default route and falls back to the
// first up, non-loopback interface, then to loopback.
func OutgoingIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP
		}
	}
	return firstIPv4()
}

// firstIPv4 is used on networks without a default route.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	logging.Logger().Warn("[NET] no LAN address, share link uses loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink builds the link a client is launched with.
func ShareLink(scheme string, ip net.IP, port int) string {
	return scheme + net.JoinHostPort(ip.String(), fmt.Sprint(port))
}

// ParseLink extracts "host:port" from a share link. An empty address means
// the client should browse for a host.
func ParseLink(scheme, link string) (string, error) {
	if !strings.HasPrefix(link, scheme) {
		return "", fmt.Errorf("link %q does not start with %s", link, scheme)
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, scheme), "/")
	if addr == "" {
		return "", nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("bad host address %q: %w", addr, err)
	}
	return addr, nil
}
