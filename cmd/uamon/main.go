// Command uamon is a headless OPC UA monitoring daemon.
//
// The daemon runs against a built-in simulation server whose address
// space comes from a YAML fixture file or, without one, from a
// default space with the standard namespace skeleton. It subscribes
// to a configured set of nodes and fans every data change out to:
//   - structured logs (text or JSON)
//   - Prometheus gauges served on /metrics
//   - an MQTT broker, one JSON sample per change
//
// Usage:
//
//	uamon [flags]
//
// Flags:
//
//	-config string     Path to the YAML configuration (default: uamon.yaml on the search path)
//	-log-level string  Override the configured log level
//
// Configuration:
//
//	name: plant-monitor
//	fixture: plant.yaml
//	protocol_log: session.ualog
//	publishing_interval: 500ms
//	sampling_interval: 250ms
//	nodes:
//	  - name: boiler_temperature
//	    id: "ns=2;i=101"
//	mqtt:
//	  enabled: true
//	  url: tcp://localhost:1883
//	  topic_prefix: uamon/plant
//	  qos: 1
//	metrics:
//	  listen: ":9464"
//	logger:
//	  level: info
//	  format: text
//
// Examples:
//
//	# Monitor the nodes listed in uamon.yaml
//	uamon
//
//	# Same configuration, debug logging
//	uamon -config plant.yaml -log-level debug
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opcua-sdk/opcua-go/cmd/uamon/daemon"
	"github.com/opcua-sdk/opcua-go/internal/testharness/addrspace"
	"github.com/opcua-sdk/opcua-go/internal/testharness/fixture"
	"github.com/opcua-sdk/opcua-go/internal/testharness/simserver"
	"github.com/opcua-sdk/opcua-go/pkg/client"
	ualog "github.com/opcua-sdk/opcua-go/pkg/log"
)

var (
	configPath string
	logLevel   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to the YAML configuration")
	flag.StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

func main() {
	flag.Parse()

	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	logger := daemon.NewLogger(cfg.Logger)

	logger.WithField("name", cfg.Name).Infoln("OPC UA Monitoring Daemon")

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	space, fix, err := buildSpace(cfg)
	if err != nil {
		logger.Fatalf("Failed to load fixture: %v", err)
	}
	srv := simserver.New(space)
	if fix != nil {
		stop := fix.Start(srv)
		defer stop()
		logger.WithFields(logrus.Fields{
			"fixture":     fix.Name,
			"nodes":       space.NumNodes(),
			"simulations": len(fix.Simulations),
		}).Infoln("Fixture loaded")
	} else {
		logger.WithField("nodes", space.NumNodes()).Infoln("Using default address space")
	}

	clientCfg := client.DefaultConfig()
	if cfg.ProtocolLog != "" {
		protocolLog, err := ualog.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			logger.Fatalf("Failed to open protocol log: %v", err)
		}
		defer protocolLog.Close()
		clientCfg.Logger = protocolLog
		logger.WithField("path", cfg.ProtocolLog).Infoln("Protocol events logged (view with ualog)")
	}
	cli := client.New(srv, clientCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	err = cli.Connect(connectCtx)
	connectCancel()
	if err != nil {
		logger.Fatalf("Failed to connect: %v", err)
	}
	if id, ok := cli.SessionID(); ok {
		logger.WithField("session", id).Infoln("Session activated")
	}

	met := daemon.NewMetrics()
	if cfg.Metrics.Enabled {
		serveMetrics(logger, cfg.Metrics.Listen, met)
	}

	var pub *daemon.Publisher
	if cfg.MQTT.Enabled {
		pub = daemon.NewPublisher(logger, cfg.MQTT)
		if err := pub.Connect(ctx); err != nil {
			logger.Fatalf("Failed to start MQTT session: %v", err)
		}
	}

	mon := daemon.New(cfg, logger, cli, pub, met)
	errCh := make(chan error, 1)
	go func() { errCh <- mon.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig).Infoln("Shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Errorln("Monitor stopped")
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if pub != nil {
		if err := pub.Close(shutdownCtx); err != nil {
			logger.WithError(err).Warnln("MQTT close failed")
		}
	}
	if err := cli.Close(shutdownCtx); err != nil {
		logger.WithError(err).Warnln("Client close failed")
	}
	logger.Infoln("Shutdown complete")
}

// serveMetrics exposes the daemon's registry over HTTP. Failures only
// cost the metrics endpoint, not the monitor.
func serveMetrics(logger *logrus.Logger, listen string, met *daemon.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	go func() {
		logger.WithField("listen", listen).Infoln("Serving Prometheus metrics on /metrics")
		if err := http.ListenAndServe(listen, mux); err != nil {
			logger.WithError(err).Errorln("Metrics server stopped")
		}
	}()
}

// buildSpace loads the configured fixture, or falls back to the
// default address space.
func buildSpace(cfg daemon.Config) (*addrspace.Space, *fixture.Fixture, error) {
	if cfg.Fixture == "" {
		return addrspace.Default(), nil, nil
	}
	fix, err := fixture.Load(cfg.Fixture)
	if err != nil {
		return nil, nil, err
	}
	return fix.Space, fix, nil
}
