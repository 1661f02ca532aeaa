// Command uabrowse is an interactive OPC UA address space browser.
//
// The browser runs against a built-in simulation server whose address
// space comes from a YAML fixture file or, without one, from a default
// space with the standard namespace skeleton. It demonstrates:
//   - Session establishment with optional user authentication
//   - Hierarchy navigation with paginated browsing
//   - Attribute reads and writes
//   - Method calls
//   - Data change subscriptions
//   - mDNS discovery and advertising
//   - Application instance certificate provisioning
//   - Protocol event logging
//
// Usage:
//
//	uabrowse [flags]
//
// Flags:
//
//	-fixture string       YAML fixture file describing the address space
//	-name string          Instance name for mDNS advertising (default "Simulation Server")
//	-port int             Advertised endpoint port (default 4840)
//	-advertise            Advertise the simulation server via mDNS
//	-user string          Require and present this user identity
//	-password string      Password for the user identity
//	-cert-dir string      Directory for the application instance certificate and trust list
//	-page-size int        Server-side browse page cap (default 64)
//	-protocol-log string  Write protocol events to this file (view with ualog)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-connect              Connect on startup (default true)
//
// Examples:
//
//	# Browse the default address space
//	uabrowse
//
//	# Serve a plant fixture and record the protocol exchange
//	uabrowse -fixture plant.yaml -protocol-log session.ualog
//
//	# Small pages make continuation points visible
//	uabrowse -page-size 2
//
//	# Require authentication
//	uabrowse -user operator -password secret
//
//	# Keep an application identity across runs
//	uabrowse -cert-dir ~/.uabrowse/pki
//
// Interactive Commands:
//
//	ls [node]          - Browse references of the current node
//	cd <name|node|..>  - Descend into a child node
//	read [node] [attr] - Read an attribute
//	write <node> <val> - Write the Value attribute
//	call <method>      - Call a method of the current node
//	monitor <node>     - Monitor the Value attribute for changes
//	discover           - Browse the network for OPC UA servers
//	export <file>      - Export the subtree as a YAML fixture
//	status             - Show session state and counters
//	quit               - Exit the browser
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/opcua-sdk/opcua-go/cmd/uabrowse/interactive"
	"github.com/opcua-sdk/opcua-go/internal/testharness/addrspace"
	"github.com/opcua-sdk/opcua-go/internal/testharness/fixture"
	"github.com/opcua-sdk/opcua-go/internal/testharness/simserver"
	"github.com/opcua-sdk/opcua-go/pkg/cert"
	"github.com/opcua-sdk/opcua-go/pkg/client"
	"github.com/opcua-sdk/opcua-go/pkg/discovery"
	ualog "github.com/opcua-sdk/opcua-go/pkg/log"
)

// Config holds the browser configuration.
// It implements interactive.ShellConfig.
type Config struct {
	FixturePath  string
	InstanceName string
	Port         int
	Advertise    bool
	User         string
	Password     string
	CertDir      string
	PageSize     int
	ProtocolLog  string
	LogLevel     string
	Connect      bool
}

// EndpointURL implements interactive.ShellConfig.
func (c *Config) EndpointURL() string {
	return discovery.BuildEndpointURL("localhost", uint16(c.Port), "")
}

var config Config

func init() {
	flag.StringVar(&config.FixturePath, "fixture", "", "YAML fixture file describing the address space")
	flag.StringVar(&config.InstanceName, "name", "Simulation Server", "Instance name for mDNS advertising")
	flag.IntVar(&config.Port, "port", discovery.DefaultPort, "Advertised endpoint port")
	flag.BoolVar(&config.Advertise, "advertise", false, "Advertise the simulation server via mDNS")
	flag.StringVar(&config.User, "user", "", "Require and present this user identity")
	flag.StringVar(&config.Password, "password", "", "Password for the user identity")
	flag.StringVar(&config.CertDir, "cert-dir", "", "Directory for the application instance certificate and trust list")
	flag.IntVar(&config.PageSize, "page-size", simserver.DefaultPageCap, "Server-side browse page cap")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "Write protocol events to this file (view with ualog)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Connect, "connect", true, "Connect on startup")
}

func main() {
	flag.Parse()

	setupLogging(config.LogLevel)

	log.Println("OPC UA Interactive Browser")
	log.Println("==========================")

	if err := validateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	space, fix, err := buildSpace()
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}
	srv := simserver.New(space)

	if config.User != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(config.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		srv.RequireAuth(config.User, hash)
		srv.SetIdentity(config.User, config.Password)
		log.Printf("Session authentication enabled for user %q", config.User)
	}
	if config.PageSize > 0 {
		srv.SetPageCap(uint32(config.PageSize))
	}

	if fix != nil {
		stop := fix.Start(srv)
		defer stop()
		log.Printf("Loaded fixture %q: %d nodes, %d simulations",
			fix.Name, space.NumNodes(), len(fix.Simulations))
	} else {
		log.Printf("Using default address space (%d nodes)", space.NumNodes())
	}
	log.Printf("Endpoint: %s", config.EndpointURL())

	if config.CertDir != "" {
		if err := provisionCert(); err != nil {
			log.Fatalf("Failed to provision application certificate: %v", err)
		}
	}

	clientCfg := client.DefaultConfig()
	if config.ProtocolLog != "" {
		protocolLog, err := ualog.NewFileLogger(config.ProtocolLog)
		if err != nil {
			log.Fatalf("Failed to open protocol log: %v", err)
		}
		defer protocolLog.Close()
		clientCfg.Logger = protocolLog
		log.Printf("Protocol events logged to %s (view with ualog)", config.ProtocolLog)
	}

	cli := client.New(srv, clientCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Advertise {
		advertise(ctx)
	}

	if config.Connect {
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		err := cli.Connect(connectCtx)
		connectCancel()
		if err != nil {
			log.Printf("Warning: connect failed: %v (use 'connect' to retry)", err)
		} else if id, ok := cli.SessionID(); ok {
			log.Printf("Session activated: %s", id)
		}
	}

	ic, err := interactive.New(cli, srv, &config)
	if err != nil {
		log.Fatalf("Failed to create interactive browser: %v", err)
	}
	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(ic.Stdout())
	go ic.Run(ctx, cancel)

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g., by the quit command)
	}

	log.Println("Shutting down...")

	if err := cli.Close(context.Background()); err != nil {
		log.Printf("Error closing client: %v", err)
	}

	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

func validateConfig() error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", config.Port)
	}
	if config.Password != "" && config.User == "" {
		return fmt.Errorf("-password requires -user")
	}
	if config.PageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", config.PageSize)
	}
	return nil
}

// buildSpace loads the configured fixture, or falls back to the
// default address space.
func buildSpace() (*addrspace.Space, *fixture.Fixture, error) {
	if config.FixturePath == "" {
		return addrspace.Default(), nil, nil
	}
	fix, err := fixture.Load(config.FixturePath)
	if err != nil {
		return nil, nil, err
	}
	return fix.Space, fix, nil
}

// provisionCert loads the application instance certificate from the
// certificate directory, generating a fresh one on first run or when
// the stored certificate is due for renewal. The browser's own
// certificate is kept in the trust list under <cert-dir>/trusted.
func provisionCert() error {
	certPath := filepath.Join(config.CertDir, "uabrowse-cert.pem")
	keyPath := filepath.Join(config.CertDir, "uabrowse-key.pem")

	ac, err := cert.LoadApplicationCert(certPath, keyPath)
	if err == nil && !ac.NeedsRenewal() {
		log.Printf("Application certificate %s (expires %s)",
			ac.Thumbprint(), ac.ExpiresAt().Format(time.RFC3339))
	} else {
		if err == nil {
			log.Printf("Application certificate expires %s, renewing",
				ac.ExpiresAt().Format(time.RFC3339))
		}
		host, herr := os.Hostname()
		if herr != nil {
			host = "localhost"
		}
		ac, err = cert.GenerateApplicationCert(cert.CertificateRequest{
			ApplicationName: config.InstanceName,
			ApplicationURI:  fmt.Sprintf("urn:%s:opcua-sdk:uabrowse", host),
			Hosts:           []string{"localhost", host},
		})
		if err != nil {
			return err
		}
		if err := os.MkdirAll(config.CertDir, 0755); err != nil {
			return err
		}
		if err := cert.SaveApplicationCert(certPath, keyPath, ac); err != nil {
			return err
		}
		log.Printf("Generated application certificate %s for %s",
			ac.Thumbprint(), ac.ApplicationURI())
	}

	trust := cert.NewFileTrustStore(filepath.Join(config.CertDir, "trusted"))
	if err := trust.Load(); err != nil {
		return err
	}
	if !trust.IsTrusted(ac.Certificate) {
		if err := trust.Trust(ac.Certificate); err != nil {
			return err
		}
		if err := trust.Save(); err != nil {
			return err
		}
	}
	log.Printf("Trust list: %d certificate(s) in %s", trust.Count(), trust.Dir())
	return nil
}

// advertise registers the simulation server with mDNS.
func advertise(ctx context.Context) {
	adv, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	if err != nil {
		log.Printf("Warning: mDNS advertiser unavailable: %v", err)
		return
	}

	info := &discovery.ServerInfo{
		Name:         config.InstanceName,
		Port:         uint16(config.Port),
		Capabilities: []discovery.ServerCapability{discovery.CapabilityDA},
	}
	if err := adv.Advertise(ctx, info); err != nil {
		log.Printf("Warning: failed to advertise: %v", err)
		return
	}
	log.Printf("Advertising %q on port %d", config.InstanceName, config.Port)

	go func() {
		<-ctx.Done()
		adv.StopAll()
	}()
}
