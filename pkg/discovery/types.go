package discovery

import (
	"errors"
	"strings"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeServer is the DNS-SD service type OPC UA servers register
	// for multicast discovery (OPC UA Part 12 LDS-ME).
	ServiceTypeServer = "_opcua-tcp._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the IANA-registered OPC UA TCP port.
	DefaultPort = 4840
)

// TXT record key constants (OPC UA Part 12).
const (
	// TXTKeyPath is the endpoint path below the host, e.g. "/simulation".
	// Optional; an absent or empty path means the server root.
	TXTKeyPath = "path"

	// TXTKeyCaps lists the server capability tokens, comma-separated.
	// Required; servers without capabilities advertise "NA".
	TXTKeyCaps = "caps"
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// AdvertiseTTL is the default DNS record TTL.
	AdvertiseTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400

	// ApplicationIDLength is the length of a derived application ID
	// (16 hex chars = 64 bits).
	ApplicationIDLength = 16
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("server not found")
	ErrInvalidEndpointURL  = errors.New("invalid endpoint URL")
	ErrInvalidScheme       = errors.New("endpoint scheme is not opc.tcp")
	ErrInvalidPort         = errors.New("endpoint port out of range")
)

// ServerCapability is a server capability token from OPC UA Part 12.
// Servers may advertise tokens beyond the predefined set.
type ServerCapability string

const (
	// CapabilityLDS marks a Local Discovery Server.
	CapabilityLDS ServerCapability = "LDS"

	// CapabilityDA marks Data Access support.
	CapabilityDA ServerCapability = "DA"

	// CapabilityHD marks Historical Data Access support.
	CapabilityHD ServerCapability = "HD"

	// CapabilityAC marks Alarms and Conditions support.
	CapabilityAC ServerCapability = "AC"

	// CapabilityHE marks Historical Events support.
	CapabilityHE ServerCapability = "HE"

	// CapabilityGDS marks a Global Discovery Server.
	CapabilityGDS ServerCapability = "GDS"

	// CapabilityNA marks a server without capability information.
	CapabilityNA ServerCapability = "NA"
)

// Description returns the capability name.
func (c ServerCapability) Description() string {
	switch c {
	case CapabilityLDS:
		return "LOCAL_DISCOVERY_SERVER"
	case CapabilityDA:
		return "DATA_ACCESS"
	case CapabilityHD:
		return "HISTORICAL_DATA"
	case CapabilityAC:
		return "ALARMS_CONDITIONS"
	case CapabilityHE:
		return "HISTORICAL_EVENTS"
	case CapabilityGDS:
		return "GLOBAL_DISCOVERY_SERVER"
	case CapabilityNA:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// DiscoveredServer represents an OPC UA server found via mDNS.
type DiscoveredServer struct {
	// InstanceName is the mDNS instance name (e.g., "Simulation Server").
	InstanceName string

	// Host is the hostname (e.g., "plc-001.local.").
	Host string

	// Port is the service port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string

	// Path is the endpoint path (from TXT "path", leading slash).
	Path string

	// Capabilities contains the capability tokens (from TXT "caps").
	Capabilities []ServerCapability
}

// EndpointURL returns the opc.tcp URL for connecting to this server.
func (s *DiscoveredServer) EndpointURL() string {
	host := strings.TrimSuffix(s.Host, ".")
	return BuildEndpointURL(host, s.Port, s.Path)
}

// HasCapability reports whether the server advertises the given token.
func (s *DiscoveredServer) HasCapability(c ServerCapability) bool {
	for _, have := range s.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// ServerInfo contains information for advertising an OPC UA server.
type ServerInfo struct {
	// Name is the mDNS instance name, typically the application name.
	Name string

	// Port is the service port. Zero means DefaultPort.
	Port uint16

	// Path is the optional endpoint path below the host.
	Path string

	// Capabilities lists the capability tokens. Empty means "NA".
	Capabilities []ServerCapability
}

// Validate checks if the ServerInfo can be advertised.
func (s *ServerInfo) Validate() error {
	if s.Name == "" {
		return ErrMissingRequired
	}
	return ValidateInstanceName(s.Name)
}
