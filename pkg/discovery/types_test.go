package discovery

import (
	"errors"
	"testing"
)

func TestDiscoveredServerEndpointURL(t *testing.T) {
	tests := []struct {
		name   string
		server DiscoveredServer
		want   string
	}{
		{
			name: "TrailingDotTrimmed",
			server: DiscoveredServer{
				Host: "plc-001.local.",
				Port: 4840,
				Path: "/simulation",
			},
			want: "opc.tcp://plc-001.local:4840/simulation",
		},
		{
			name: "NoPath",
			server: DiscoveredServer{
				Host: "plc-001.local",
				Port: 4841,
			},
			want: "opc.tcp://plc-001.local:4841",
		},
		{
			name: "ZeroPortUsesDefault",
			server: DiscoveredServer{
				Host: "plc-001.local",
			},
			want: "opc.tcp://plc-001.local:4840",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.EndpointURL(); got != tt.want {
				t.Errorf("EndpointURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiscoveredServerHasCapability(t *testing.T) {
	server := DiscoveredServer{
		Capabilities: []ServerCapability{CapabilityLDS, CapabilityDA},
	}

	if !server.HasCapability(CapabilityDA) {
		t.Error("HasCapability(DA) = false, want true")
	}
	if server.HasCapability(CapabilityHD) {
		t.Error("HasCapability(HD) = true, want false")
	}
}

func TestServerCapabilityDescription(t *testing.T) {
	tests := []struct {
		cap  ServerCapability
		want string
	}{
		{CapabilityLDS, "LOCAL_DISCOVERY_SERVER"},
		{CapabilityDA, "DATA_ACCESS"},
		{CapabilityHD, "HISTORICAL_DATA"},
		{CapabilityAC, "ALARMS_CONDITIONS"},
		{CapabilityHE, "HISTORICAL_EVENTS"},
		{CapabilityGDS, "GLOBAL_DISCOVERY_SERVER"},
		{CapabilityNA, "NONE"},
		{ServerCapability("PLC"), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.cap.Description(); got != tt.want {
			t.Errorf("%s.Description() = %q, want %q", string(tt.cap), got, tt.want)
		}
	}
}

func TestServerInfoValidate(t *testing.T) {
	tests := []struct {
		name    string
		info    ServerInfo
		wantErr error
	}{
		{
			name: "Valid",
			info: ServerInfo{Name: "Simulation Server", Port: 4840},
		},
		{
			name:    "EmptyName",
			info:    ServerInfo{Port: 4840},
			wantErr: ErrMissingRequired,
		},
		{
			name:    "NameTooLong",
			info:    ServerInfo{Name: string(make([]byte, 70))},
			wantErr: ErrInstanceNameTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
