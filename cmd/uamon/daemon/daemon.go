// Package daemon implements the uamon monitoring loop: one
// subscription over the configured nodes whose data changes fan out
// to structured logs, Prometheus gauges and an MQTT broker.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opcua-sdk/opcua-go/pkg/client"
	"github.com/opcua-sdk/opcua-go/pkg/session"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// publishTimeout caps the broker wait per sample. The connection
// manager keeps retrying in the background regardless.
const publishTimeout = 5 * time.Second

// Daemon monitors the configured nodes over one subscription and
// fans every data change out to the sinks. A nil publisher disables
// MQTT delivery.
type Daemon struct {
	cfg Config
	log *logrus.Logger
	cli *client.Client
	pub *Publisher
	met *Metrics

	wg sync.WaitGroup
}

// New assembles a daemon from its sinks.
func New(cfg Config, log *logrus.Logger, cli *client.Client, pub *Publisher, met *Metrics) *Daemon {
	return &Daemon{cfg: cfg, log: log, cli: cli, pub: pub, met: met}
}

// Run subscribes to every configured node and blocks until ctx is
// cancelled. The current value of each node is delivered once up
// front, so the sinks start populated.
func (d *Daemon) Run(ctx context.Context) error {
	d.met.SessionUp(d.cli.State() == session.StateSessionActivated)
	d.cli.OnStateChange(func(_, newState session.State) {
		d.met.SessionUp(newState == session.StateSessionActivated)
		d.log.WithField("state", newState).Infoln("Session state changed")
	})

	sub, err := d.cli.CreateSubscription(ctx, &client.SubscriptionOptions{
		PublishingInterval: d.cfg.PublishingInterval,
		LifetimeCount:      client.DefaultLifetimeCount,
		MaxKeepAliveCount:  client.DefaultMaxKeepAliveCount,
	})
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	d.log.WithFields(logrus.Fields{
		"subscription": sub.ID(),
		"interval":     sub.PublishingInterval(),
	}).Infoln("Subscription created")

	if err := d.monitorAll(ctx, sub); err != nil {
		_ = sub.Close(ctx)
		d.wg.Wait()
		return err
	}

	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sub.Close(closeCtx); err != nil {
		d.log.WithError(err).Warnln("Subscription close failed")
	}
	d.wg.Wait()
	return nil
}

// monitorAll registers a monitored item per configured node and
// starts its change watcher.
func (d *Daemon) monitorAll(ctx context.Context, sub *client.Subscription) error {
	for _, n := range d.cfg.Nodes {
		id, err := ua.ParseNodeID(n.ID)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		item, err := sub.MonitorValue(ctx, id, &client.MonitorOptions{
			Attribute:        ua.AttributeIDValue,
			SamplingInterval: d.cfg.SamplingInterval,
			QueueSize:        client.DefaultQueueSize,
			DiscardOldest:    true,
		})
		if err != nil {
			return fmt.Errorf("monitor %q: %w", n.Name, err)
		}
		d.log.WithFields(logrus.Fields{
			"node": n.Name,
			"id":   n.ID,
			"item": item.ID(),
		}).Infoln("Monitoring node")

		if dv, err := d.cli.ReadValue(ctx, id); err == nil {
			d.deliver(ctx, n.Name, dv)
		}

		d.wg.Add(1)
		go d.watch(ctx, n.Name, item)
	}
	return nil
}

// watch drains one item's change stream. The stream closes when the
// subscription is torn down.
func (d *Daemon) watch(ctx context.Context, name string, item *client.MonitoredItem) {
	defer d.wg.Done()
	for dv := range item.Changes() {
		d.deliver(ctx, name, dv)
	}
}

// deliver fans one data change out to the log, the metrics and the
// broker.
func (d *Daemon) deliver(ctx context.Context, name string, dv ua.DataValue) {
	d.log.WithFields(logrus.Fields{
		"node":   name,
		"value":  dv.Value,
		"status": dv.Status.String(),
	}).Debugln("Value update")
	d.met.Observe(name, dv)

	if d.pub == nil {
		return
	}
	payload, err := encodeSample(name, dv)
	if err != nil {
		d.log.WithError(err).WithField("node", name).Warnln("Sample encoding failed")
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	topic := d.pub.Topic(name)
	if err := d.pub.Publish(pubCtx, topic, payload); err != nil {
		d.met.PublishError()
		d.log.WithError(err).WithField("topic", topic).Errorln("MQTT publish failed")
		return
	}
	d.met.Published()
}
