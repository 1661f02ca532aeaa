package discovery

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// EndpointScheme is the URL scheme for OPC UA TCP endpoints.
const EndpointScheme = "opc.tcp"

// Endpoint is a parsed opc.tcp endpoint URL.
type Endpoint struct {
	// Host is the hostname or IP address, without brackets.
	Host string

	// Port is the TCP port.
	Port uint16

	// Path is the endpoint path below the host, with leading slash,
	// or empty for the server root.
	Path string
}

// ParseEndpointURL parses an endpoint URL of the form
// "opc.tcp://host:port/path".
//
// The port defaults to 4840 when absent. IPv6 hosts use brackets:
// "opc.tcp://[fe80::1]:4840".
func ParseEndpointURL(raw string) (*Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpointURL, err)
	}

	if u.Scheme != EndpointScheme {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidEndpointURL)
	}

	port := uint64(DefaultPort)
	if p := u.Port(); p != "" {
		port, err = strconv.ParseUint(p, 10, 16)
		if err != nil || port == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPort, p)
		}
	}

	return &Endpoint{
		Host: host,
		Port: uint16(port),
		Path: u.Path,
	}, nil
}

// String returns the endpoint as an opc.tcp URL.
func (e *Endpoint) String() string {
	return BuildEndpointURL(e.Host, e.Port, e.Path)
}

// Addr returns the host:port address for dialing.
func (e *Endpoint) Addr() string {
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(int(port)))
}

// BuildEndpointURL formats an opc.tcp endpoint URL. A zero port means
// DefaultPort; IPv6 hosts are bracketed.
func BuildEndpointURL(host string, port uint16, path string) string {
	if port == 0 {
		port = DefaultPort
	}
	hostport := net.JoinHostPort(host, strconv.Itoa(int(port)))
	return fmt.Sprintf("%s://%s%s", EndpointScheme, hostport, normalizePath(path))
}
