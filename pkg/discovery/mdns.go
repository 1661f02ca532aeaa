package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig
	logger log.Logger

	mu sync.Mutex

	// Active registrations keyed by instance name
	servers map[string]*zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	return &MDNSAdvertiser{
		config:  config,
		logger:  log.OrNoop(config.Logger),
		servers: make(map[string]*zeroconf.Server),
	}, nil
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts advertising a server under its instance name.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *ServerInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Replace existing registration for this name if any
	if server, exists := a.servers[info.Name]; exists {
		server.Shutdown()
		delete(a.servers, info.Name)
	}

	// Build TXT records
	txtRecords := EncodeServerTXT(info)
	txtStrings := TXTRecordsToStrings(txtRecords)

	// Determine port
	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	// Register service
	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	// Get interfaces (nil means all interfaces)
	ifaces := a.getInterfaces()

	server, err := zeroconf.Register(
		info.Name,
		ServiceTypeServer,
		Domain,
		port,
		txtStrings,
		ifaces,
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register server service: %w", err)
	}

	a.servers[info.Name] = server
	a.logAdvertise(info.Name, port, false)
	return nil
}

// Update replaces the TXT records of an advertised server.
func (a *MDNSAdvertiser) Update(instance string, info *ServerInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[instance]
	if !exists {
		return ErrNotFound
	}

	// Update TXT records
	txtRecords := EncodeServerTXT(info)
	txtStrings := TXTRecordsToStrings(txtRecords)
	server.SetText(txtStrings)

	return nil
}

// Stop stops advertising a specific server.
func (a *MDNSAdvertiser) Stop(instance string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[instance]
	if !exists {
		return ErrNotFound
	}

	server.Shutdown()
	delete(a.servers, instance)
	a.logAdvertise(instance, 0, true)
	return nil
}

// StopAll stops all advertisements.
func (a *MDNSAdvertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for instance, server := range a.servers {
		server.Shutdown()
		delete(a.servers, instance)
		a.logAdvertise(instance, 0, true)
	}
}

func (a *MDNSAdvertiser) logAdvertise(instance string, port int, removed bool) {
	a.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Category:  log.CategoryDiscovery,
		Discovery: &log.DiscoveryEvent{
			Instance: instance,
			Port:     port,
			Removed:  removed,
		},
	})
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	logger log.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{
		config: config,
		logger: log.OrNoop(config.Logger),
	}, nil
}

// Browse searches for OPC UA servers on the local network.
// Services are aggregated by instance name - addresses from multiple
// interfaces are combined into a single entry. Removals are handled
// when interfaces disappear.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *DiscoveredServer, error) {
	ctx = b.watch(ctx)

	out := make(chan *DiscoveredServer)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	// Set up browser options
	opts := b.browserOptions()

	// Process entries with aggregation
	go b.aggregate(ctx, entries, removed, out)

	// Start browsing in background
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeServer, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// aggregate tracks servers by instance name, merging addresses seen on
// multiple interfaces, and forwards each server once. A server whose
// addresses have all disappeared is dropped and may be emitted again
// when it returns.
func (b *MDNSBrowser) aggregate(ctx context.Context, entries, removed <-chan *zeroconf.ServiceEntry, out chan<- *DiscoveredServer) {
	defer close(out)

	services := make(map[string]*DiscoveredServer)

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			svc := b.entryToServer(entry)
			if svc == nil {
				continue
			}

			existing, found := services[svc.InstanceName]
			if found {
				// Merge addresses into existing entry
				existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				continue
			}

			// New server - store and emit
			services[svc.InstanceName] = svc
			b.logDiscovery(svc, false)
			select {
			case out <- svc:
			case <-ctx.Done():
				return
			}

		case entry, ok := <-removed:
			if !ok {
				continue
			}
			// Remove addresses that came from this interface
			if existing, found := services[entry.Instance]; found {
				existing.Addresses = removeAddresses(existing.Addresses, entry)
				// If no addresses remain, remove the server
				if len(existing.Addresses) == 0 {
					delete(services, entry.Instance)
					b.logDiscovery(existing, true)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

// FindByName searches for a server with the given instance name.
func (b *MDNSBrowser) FindByName(ctx context.Context, instance string) (*DiscoveredServer, error) {
	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.InstanceName == instance {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	cancels := b.cancels
	b.cancels = nil
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// watch wraps the context so Stop can cancel the browse.
func (b *MDNSBrowser) watch(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()
	return ctx
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToServer converts a zeroconf entry to a DiscoveredServer.
// Entries with malformed TXT records are skipped.
func (b *MDNSBrowser) entryToServer(entry *zeroconf.ServiceEntry) *DiscoveredServer {
	txt := StringsToTXTRecords(entry.Text)
	info, err := DecodeServerTXT(txt)
	if err != nil {
		return nil
	}

	// Collect addresses
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &DiscoveredServer{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		Path:         info.Path,
		Capabilities: info.Capabilities,
	}
}

func (b *MDNSBrowser) logDiscovery(svc *DiscoveredServer, removed bool) {
	b.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Category:  log.CategoryDiscovery,
		Discovery: &log.DiscoveryEvent{
			Instance: svc.InstanceName,
			Host:     svc.Host,
			Port:     int(svc.Port),
			Removed:  removed,
		},
	})
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, new []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range new {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes addresses from a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	// Build set of addresses to remove
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	// Filter out removed addresses
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
