package discovery

import (
	"fmt"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeServerTXT creates TXT records for server discovery.
func EncodeServerTXT(info *ServerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyCaps] = encodeCapabilities(info.Capabilities)

	// Optional fields
	if info.Path != "" {
		txt[TXTKeyPath] = normalizePath(info.Path)
	}

	return txt
}

// DecodeServerTXT parses TXT records from server discovery.
// Only Path and Capabilities are filled; host and port come from the
// service entry itself.
func DecodeServerTXT(txt TXTRecordMap) (*ServerInfo, error) {
	info := &ServerInfo{}

	// Parse capabilities (required)
	capStr, ok := txt[TXTKeyCaps]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyCaps)
	}
	caps, err := parseCapabilities(capStr)
	if err != nil {
		return nil, err
	}
	info.Capabilities = caps

	// Optional fields
	if path, ok := txt[TXTKeyPath]; ok && path != "" {
		info.Path = normalizePath(path)
	}

	return info, nil
}

// encodeCapabilities converts capability tokens to a comma-separated string.
// An empty list encodes as "NA" per OPC UA Part 12.
func encodeCapabilities(caps []ServerCapability) string {
	if len(caps) == 0 {
		return string(CapabilityNA)
	}

	strs := make([]string, len(caps))
	for i, c := range caps {
		strs[i] = string(c)
	}
	return strings.Join(strs, ",")
}

// parseCapabilities parses a comma-separated capability token string.
// Tokens are uppercased; unknown tokens are kept so newer servers stay
// discoverable.
func parseCapabilities(s string) ([]ServerCapability, error) {
	parts := strings.Split(s, ",")
	caps := make([]ServerCapability, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		caps = append(caps, ServerCapability(strings.ToUpper(p)))
	}

	if len(caps) == 0 {
		return nil, fmt.Errorf("%w: empty capability list", ErrInvalidTXTRecord)
	}

	return caps, nil
}

// normalizePath ensures a non-empty path carries a leading slash.
func normalizePath(path string) string {
	if path == "" || strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
