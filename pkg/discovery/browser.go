package discovery

import (
	"context"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// Browser provides mDNS browsing for OPC UA servers.
type Browser interface {
	// Browse searches for servers on the local network. The channel
	// delivers each server once, aggregated across interfaces, and is
	// closed when the context is cancelled or browsing completes.
	Browse(ctx context.Context) (<-chan *DiscoveredServer, error)

	// FindByName searches for a server with the given instance name.
	// Returns when found or when the context is cancelled.
	FindByName(ctx context.Context, instance string) (*DiscoveredServer, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Logger receives discovery events. Nil disables logging.
	Logger log.Logger
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// FilterFunc is a function that filters discovered servers.
type FilterFunc func(*DiscoveredServer) bool

// FilterByCapability returns a filter that matches servers advertising
// any of the given capability tokens.
func FilterByCapability(caps ...ServerCapability) FilterFunc {
	capSet := make(map[ServerCapability]struct{})
	for _, c := range caps {
		capSet[c] = struct{}{}
	}

	return func(svc *DiscoveredServer) bool {
		for _, c := range svc.Capabilities {
			if _, ok := capSet[c]; ok {
				return true
			}
		}
		return false
	}
}

// FilterByName returns a filter that matches servers with the given
// instance name.
func FilterByName(instance string) FilterFunc {
	return func(svc *DiscoveredServer) bool {
		return svc.InstanceName == instance
	}
}

// FilterDiscoveries filters a channel of discovered servers.
func FilterDiscoveries(in <-chan *DiscoveredServer, filter FilterFunc) <-chan *DiscoveredServer {
	out := make(chan *DiscoveredServer)
	go func() {
		defer close(out)
		for svc := range in {
			if filter(svc) {
				out <- svc
			}
		}
	}()
	return out
}

// ServiceEntry holds raw mDNS service entry data.
// This is a helper for Browser implementations and tests.
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToDiscoveredServer converts a ServiceEntry to a DiscoveredServer.
func (e *ServiceEntry) ToDiscoveredServer() (*DiscoveredServer, error) {
	txt := StringsToTXTRecords(e.Text)
	info, err := DecodeServerTXT(txt)
	if err != nil {
		return nil, err
	}

	return &DiscoveredServer{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    e.Addrs,
		Path:         info.Path,
		Capabilities: info.Capabilities,
	}, nil
}
