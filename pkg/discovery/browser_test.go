package discovery

import (
	"errors"
	"reflect"
	"testing"
)

func TestServiceEntryToDiscoveredServer(t *testing.T) {
	tests := []struct {
		name     string
		entry    ServiceEntry
		wantPath string
		wantCaps []ServerCapability
		wantErr  bool
	}{
		{
			name: "ValidWithAllFields",
			entry: ServiceEntry{
				Instance: "Simulation Server",
				Service:  ServiceTypeServer,
				Domain:   Domain,
				Host:     "plc-001.local.",
				Port:     4840,
				Text: []string{
					"caps=LDS,DA",
					"path=/simulation",
				},
				Addrs: []string{"192.168.1.100", "fe80::1"},
			},
			wantPath: "/simulation",
			wantCaps: []ServerCapability{CapabilityLDS, CapabilityDA},
		},
		{
			name: "ValidWithoutPath",
			entry: ServiceEntry{
				Instance: "Bare Server",
				Service:  ServiceTypeServer,
				Domain:   Domain,
				Host:     "bare.local.",
				Port:     4841,
				Text:     []string{"caps=NA"},
				Addrs:    []string{"10.0.0.1"},
			},
			wantCaps: []ServerCapability{CapabilityNA},
		},
		{
			name: "MissingCaps",
			entry: ServiceEntry{
				Instance: "Broken Server",
				Host:     "broken.local.",
				Port:     4840,
				Text:     []string{"path=/x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := tt.entry.ToDiscoveredServer()
			if tt.wantErr {
				if err == nil {
					t.Fatal("ToDiscoveredServer() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToDiscoveredServer() error = %v", err)
			}
			if svc.InstanceName != tt.entry.Instance {
				t.Errorf("InstanceName = %q, want %q", svc.InstanceName, tt.entry.Instance)
			}
			if svc.Host != tt.entry.Host {
				t.Errorf("Host = %q, want %q", svc.Host, tt.entry.Host)
			}
			if svc.Port != tt.entry.Port {
				t.Errorf("Port = %d, want %d", svc.Port, tt.entry.Port)
			}
			if !reflect.DeepEqual(svc.Addresses, tt.entry.Addrs) {
				t.Errorf("Addresses = %v, want %v", svc.Addresses, tt.entry.Addrs)
			}
			if svc.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", svc.Path, tt.wantPath)
			}
			if !reflect.DeepEqual(svc.Capabilities, tt.wantCaps) {
				t.Errorf("Capabilities = %v, want %v", svc.Capabilities, tt.wantCaps)
			}
		})
	}
}

func TestServiceEntryToDiscoveredServerMissingCapsError(t *testing.T) {
	entry := ServiceEntry{Instance: "X", Text: []string{"path=/x"}}

	_, err := entry.ToDiscoveredServer()
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("error = %v, want %v", err, ErrMissingRequired)
	}
}

func TestFilterByCapability(t *testing.T) {
	da := &DiscoveredServer{
		InstanceName: "DA Server",
		Capabilities: []ServerCapability{CapabilityDA},
	}
	hd := &DiscoveredServer{
		InstanceName: "History Server",
		Capabilities: []ServerCapability{CapabilityHD, CapabilityHE},
	}

	filter := FilterByCapability(CapabilityDA, CapabilityGDS)

	if !filter(da) {
		t.Error("filter rejected DA server")
	}
	if filter(hd) {
		t.Error("filter accepted history-only server")
	}
}

func TestFilterByName(t *testing.T) {
	filter := FilterByName("Simulation Server")

	if !filter(&DiscoveredServer{InstanceName: "Simulation Server"}) {
		t.Error("filter rejected matching name")
	}
	if filter(&DiscoveredServer{InstanceName: "Other Server"}) {
		t.Error("filter accepted other name")
	}
}

func TestFilterDiscoveries(t *testing.T) {
	in := make(chan *DiscoveredServer)

	out := FilterDiscoveries(in, FilterByCapability(CapabilityDA))

	go func() {
		in <- &DiscoveredServer{InstanceName: "A", Capabilities: []ServerCapability{CapabilityDA}}
		in <- &DiscoveredServer{InstanceName: "B", Capabilities: []ServerCapability{CapabilityHD}}
		in <- &DiscoveredServer{InstanceName: "C", Capabilities: []ServerCapability{CapabilityDA, CapabilityHD}}
		close(in)
	}()

	var names []string
	for svc := range out {
		names = append(names, svc.InstanceName)
	}

	want := []string{"A", "C"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("filtered names = %v, want %v", names, want)
	}
}
