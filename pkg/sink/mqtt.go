package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Commands is implemented by the component that owns the wallboxes and
// the automatic charging modes.
type Commands interface {
	SetWallbox(ctx context.Context, device int, setting, value string) error
	SetChargingMode(ctx context.Context, mode string, enabled bool) error
}

// MQTT publishes readings as retained messages below a topic prefix and
// accepts commands on
//
//	<prefix>/wallbox/<n>/set/<setting>   payload: value
//	<prefix>/dashboard/set/<mode>        payload: 0 or 1
type MQTT struct {
	ctx    context.Context
	prefix string
	client mqtt.Client
	cmds   Commands
}

type pahoLogger struct {
	level logrus.Level
}

func (l pahoLogger) Println(v ...interface{}) {
	logrus.WithField("component", "mqtt").Logln(l.level, v...)
}

func (l pahoLogger) Printf(format string, v ...interface{}) {
	logrus.WithField("component", "mqtt").Logf(l.level, format, v...)
}

func init() {
	mqtt.ERROR = pahoLogger{logrus.ErrorLevel}
	mqtt.CRITICAL = pahoLogger{logrus.ErrorLevel}
	mqtt.WARN = pahoLogger{logrus.WarnLevel}
}

// NewMQTT connects to server (e.g. tcp://localhost:1883) in the
// background. cmds may be nil to disable command topics.
func NewMQTT(ctx context.Context, server, clientID, prefix string, cmds Commands) *MQTT {
	m := &MQTT{
		ctx:    ctx,
		prefix: strings.TrimSuffix(prefix, "/"),
		cmds:   cmds,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(server).
		SetClientID(clientID).
		SetConnectRetry(true).
		SetAutoReconnect(true).
		SetKeepAlive(30 * time.Second).
		SetOnConnectHandler(m.connected).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logrus.Warnf("lost connection with mqtt broker: %v", err)
		})

	logrus.WithFields(logrus.Fields{
		"server":   server,
		"clientID": clientID,
		"prefix":   m.prefix,
	}).Info("connecting to mqtt broker")

	m.client = mqtt.NewClient(opts)
	t := m.client.Connect()
	go func() {
		<-t.Done()
		if t.Error() != nil {
			logrus.Errorf("failed to connect to mqtt broker: %v", t.Error())
		}
	}()

	return m
}

func (m *MQTT) connected(c mqtt.Client) {
	logrus.Info("connected to mqtt broker")
	if m.cmds == nil {
		return
	}
	for _, topic := range []string{m.prefix + "/wallbox/+/set/+", m.prefix + "/dashboard/set/+"} {
		m.subscribe(c, topic)
	}
}

func (m *MQTT) subscribe(c mqtt.Client, topic string) {
	t := c.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		go m.handle(msg.Topic(), string(msg.Payload()))
	})
	go func() {
		<-t.Done()
		if t.Error() != nil {
			logrus.Errorf("failed to subscribe to %s: %v", topic, t.Error())
		}
	}()
}

type command struct {
	dashboard bool
	device    int
	setting   string
}

func parseCommandTopic(prefix, topic string) (command, error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return command{}, fmt.Errorf("topic %s outside of prefix %s", topic, prefix)
	}
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 3 && parts[0] == "dashboard" && parts[1] == "set":
		return command{dashboard: true, setting: parts[2]}, nil
	case len(parts) == 4 && parts[0] == "wallbox" && parts[2] == "set":
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			return command{}, fmt.Errorf("invalid wallbox number %q", parts[1])
		}
		return command{device: n, setting: parts[3]}, nil
	}
	return command{}, fmt.Errorf("unknown command topic %s", topic)
}

func (m *MQTT) handle(topic, payload string) {
	cmd, err := parseCommandTopic(m.prefix, topic)
	if err != nil {
		logrus.Debug(err)
		return
	}

	logger := logrus.WithFields(logrus.Fields{
		"topic":   topic,
		"payload": payload,
	})
	logger.Info("mqtt command received")

	if cmd.dashboard {
		var on bool
		switch payload {
		case "1", "true":
			on = true
		case "0", "false":
		default:
			logger.Warn("expected 0 or 1")
			return
		}
		err = m.cmds.SetChargingMode(m.ctx, cmd.setting, on)
	} else {
		err = m.cmds.SetWallbox(m.ctx, cmd.device, cmd.setting, payload)
	}
	if err != nil {
		logger.Errorf("mqtt command failed: %v", err)
	}
}

func (m *MQTT) Publish(_ context.Context, key string, payload []byte) error {
	topic := m.prefix + "/" + key
	t := m.client.Publish(topic, 1, true, payload)
	go func() {
		<-t.Done()
		if t.Error() != nil {
			logrus.Errorf("failed to publish to %s: %v", topic, t.Error())
		}
	}()
	return nil
}

func (m *MQTT) Close() error {
	m.client.Disconnect(1000)
	return nil
}
