package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Reason code 16 means the broker accepted the message but nothing
// subscribes to the topic.
const reasonNoSubscribers = 16

// Publisher republishes monitored values to an MQTT broker. The
// connection manager reconnects on its own; Publish waits for a live
// connection up to the context deadline.
type Publisher struct {
	log *logrus.Logger
	cfg MQTTConfig
	cm  *autopaho.ConnectionManager
}

// NewPublisher prepares a publisher. Nothing touches the network
// until Connect.
func NewPublisher(log *logrus.Logger, cfg MQTTConfig) *Publisher {
	return &Publisher{log: log, cfg: cfg}
}

// Connect starts the MQTT session. It returns as soon as the
// connection process is underway; cancelling ctx tears the session
// down. A retained status message marks the daemon online, and the
// broker publishes the offline will when the session dies.
func (p *Publisher) Connect(ctx context.Context) error {
	brokerURL, err := url.Parse(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("broker url %q: %w", p.cfg.URL, err)
	}

	clientID, err := mqttClientID(p.cfg.ClientID)
	if err != nil {
		return err
	}

	cliCfg := autopaho.ClientConfig{
		BrokerUrls:        []*url.URL{brokerURL},
		KeepAlive:         p.cfg.KeepAlive,
		ConnectRetryDelay: p.cfg.ConnectRetry,
		ConnectTimeout:    p.cfg.ConnectTimeout,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			p.log.WithField("broker", p.cfg.URL).Infoln("MQTT connection up")
			go p.announce(ctx, cm)
		},
		OnConnectError: func(err error) {
			p.log.WithError(err).Warnln("MQTT connect attempt failed")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: clientID,
			OnClientError: func(err error) {
				p.log.WithError(err).Errorln("MQTT client error")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				if d.Properties != nil {
					p.log.WithField("reason", d.Properties.ReasonString).Warnln("MQTT server disconnect")
				} else {
					p.log.WithField("code", d.ReasonCode).Warnln("MQTT server disconnect")
				}
			},
		},
	}

	if p.cfg.User != "" {
		cliCfg.SetUsernamePassword(p.cfg.User, []byte(p.cfg.Password))
	}
	cliCfg.SetWillMessage(p.statusTopic(), []byte("offline"), p.cfg.QoS, true)

	cm, err := autopaho.NewConnection(ctx, cliCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.cm = cm

	p.log.WithFields(logrus.Fields{
		"broker":    p.cfg.URL,
		"client_id": clientID,
	}).Infoln("MQTT session starting")
	return nil
}

// announce publishes the retained online status. It runs off the
// connection-up callback, so every reconnect refreshes the status.
func (p *Publisher) announce(ctx context.Context, cm *autopaho.ConnectionManager) {
	actx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	_, err := cm.Publish(actx, &paho.Publish{
		QoS:     p.cfg.QoS,
		Topic:   p.statusTopic(),
		Retain:  true,
		Payload: []byte("online"),
	})
	if err != nil {
		p.log.WithError(err).Warnln("Status announcement failed")
	}
}

// Publish sends one encoded sample. A reason code other than success
// or no-subscribers is an error.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	resp, err := p.cm.Publish(ctx, &paho.Publish{
		QoS:     p.cfg.QoS,
		Topic:   topic,
		Retain:  p.cfg.Retain,
		Payload: payload,
	})
	if err != nil {
		return err
	}
	if resp != nil && resp.ReasonCode != 0 && resp.ReasonCode != reasonNoSubscribers {
		return fmt.Errorf("publish rejected with reason code %d", resp.ReasonCode)
	}
	return nil
}

// Close flushes and tears down the MQTT session.
func (p *Publisher) Close(ctx context.Context) error {
	if p.cm == nil {
		return nil
	}
	return p.cm.Disconnect(ctx)
}

// Topic returns the publish topic for a named node.
func (p *Publisher) Topic(node string) string {
	return p.cfg.TopicPrefix + "/" + node
}

func (p *Publisher) statusTopic() string {
	return p.cfg.TopicPrefix + "/status"
}

// mqttClientID returns the configured client ID, or generates a
// unique one.
func mqttClientID(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	id, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	return "uamon::" + id, nil
}

// Sample is the JSON document published per data change.
type Sample struct {
	Node       string     `json:"node"`
	Value      ua.Variant `json:"value"`
	Status     string     `json:"status"`
	SourceTime string     `json:"source_time,omitempty"`
}

// encodeSample renders one data change for the wire.
func encodeSample(node string, dv ua.DataValue) ([]byte, error) {
	s := Sample{
		Node:   node,
		Value:  dv.Value,
		Status: dv.Status.String(),
	}
	if dv.SourceTimestamp.IsSet() {
		s.SourceTime = dv.SourceTimestamp.Time().Format(time.RFC3339Nano)
	}
	return json.Marshal(s)
}
