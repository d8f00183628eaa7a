package net

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"AnimBoard/internal/logging"

	"github.com/hashicorp/mdns"
)

const serviceType = "_animboard._tcp"

// ErrNoHost is returned when browsing finds no host.
var ErrNoHost = errors.New("no AnimBoard host found")

// Advertise announces a host listening on port. Shut the returned server
// down when the host exits.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, []net.IP{OutgoingIP()}, []string{"AnimBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.Logger().Info("[MDNS] advertising", "service", serviceType, "port", port)
	return server, nil
}

// Browse returns the "ip:port" of the first host answering within timeout.
func Browse(timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	go func() {
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4, e.Port):
			default:
			}
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	if err != nil {
		return "", fmt.Errorf("mDNS query: %w", err)
	}

	select {
	case addr := <-found:
		logging.Logger().Info("[MDNS] found host", "addr", addr)
		return addr, nil
	case <-time.After(50 * time.Millisecond):
		return "", ErrNoHost
	}
}
