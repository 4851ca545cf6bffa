package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/solarwallbox/solarwallbox/pkg/utils/ptr"
)

const (
	minPollInterval = 2000
	maxPollInterval = 5000
)

var (
	defaultFileConfig = &RawFileConfig{
		ListenAddress:  ptr.To(":8080"),
		PollIntervalMs: ptr.To(2000),
		ChargingPolicy: ptr.To("strict"),
		Locale:         ptr.To("en"),
		Senec: &RawSenecConfig{
			DeviceIP:         ptr.To(""),
			APIPath:          ptr.To("/lala.cgi"),
			DesignCapacityWh: ptr.To(10000.0),
		},
		Wallboxes: []Wallbox{
			{Name: "Wallbox Parkplatz", Role: RoleParking},
			{Name: "Wallbox Garage", Role: RoleGarage},
		},
		// One phase at 6 A, the lowest current a go-eCharger accepts.
		MinChargePowerW:    ptr.To(1380.0),
		AutomaticCharging:  ptr.To(false),
		SunChargingGarage:  ptr.To(false),
		SunChargingParking: ptr.To(false),
		ForceCharging:      ptr.To(false),
		DatabasePath:       ptr.To(""),
		MQTT: &RawMQTTConfig{
			Server:      ptr.To(""),
			ClientID:    ptr.To("solarwallbox"),
			TopicPrefix: ptr.To("solarwallbox"),
		},
		Kafka: &RawKafkaConfig{
			Brokers: nil,
			Topic:   ptr.To("solarwallbox.snapshots"),
		},
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawSenecConfig struct {
	DeviceIP         *string  `json:"device_ip,omitempty" yaml:"device_ip,omitempty"`
	APIPath          *string  `json:"device_api_path,omitempty" yaml:"device_api_path,omitempty"`
	DesignCapacityWh *float64 `json:"design_capacity,omitempty" yaml:"design_capacity,omitempty"`
}

type RawMQTTConfig struct {
	Server      *string `json:"server,omitempty" yaml:"server,omitempty"`
	ClientID    *string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	TopicPrefix *string `json:"topic_prefix,omitempty" yaml:"topic_prefix,omitempty"`
}

type RawKafkaConfig struct {
	Brokers []string `json:"brokers,omitempty" yaml:"brokers,omitempty"`
	Topic   *string  `json:"topic,omitempty" yaml:"topic,omitempty"`
}

type RawFileConfig struct {
	ListenAddress      *string         `json:"listenAddress,omitempty" yaml:"listenAddress,omitempty"`
	PollIntervalMs     *int            `json:"pollIntervalMs,omitempty" yaml:"pollIntervalMs,omitempty"`
	ChargingPolicy     *string         `json:"chargingPolicy,omitempty" yaml:"chargingPolicy,omitempty"`
	Locale             *string         `json:"locale,omitempty" yaml:"locale,omitempty"`
	Senec              *RawSenecConfig `json:"senec,omitempty" yaml:"senec,omitempty"`
	Wallboxes          []Wallbox       `json:"wallboxes,omitempty" yaml:"wallboxes,omitempty"`
	MinChargePowerW    *float64        `json:"minChargePower,omitempty" yaml:"minChargePower,omitempty"`
	AutomaticCharging  *bool           `json:"automaticCharging,omitempty" yaml:"automaticCharging,omitempty"`
	SunChargingGarage  *bool           `json:"sunChargingGarage,omitempty" yaml:"sunChargingGarage,omitempty"`
	SunChargingParking *bool           `json:"sunChargingParking,omitempty" yaml:"sunChargingParking,omitempty"`
	ForceCharging      *bool           `json:"forceCharging,omitempty" yaml:"forceCharging,omitempty"`
	DatabasePath       *string         `json:"databasePath,omitempty" yaml:"databasePath,omitempty"`
	MQTT               *RawMQTTConfig  `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	Kafka              *RawKafkaConfig `json:"kafka,omitempty" yaml:"kafka,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		ListenAddress:  ptr.To(c.ListenAddress()),
		PollIntervalMs: ptr.To(int(c.PollInterval() / time.Millisecond)),
		ChargingPolicy: ptr.To(c.ChargingPolicy()),
		Locale:         ptr.To(c.Locale()),
		Senec: &RawSenecConfig{
			DeviceIP:         ptr.To(c.SenecDeviceIP()),
			APIPath:          ptr.To(c.SenecAPIPath()),
			DesignCapacityWh: ptr.To(c.SenecDesignCapacityWh()),
		},
		Wallboxes:          c.Wallboxes(),
		MinChargePowerW:    ptr.To(c.MinChargePowerW()),
		AutomaticCharging:  ptr.To(c.ChargingMode(ModeAutomatic)),
		SunChargingGarage:  ptr.To(c.ChargingMode(ModeGarage)),
		SunChargingParking: ptr.To(c.ChargingMode(ModeParking)),
		ForceCharging:      ptr.To(c.ChargingMode(ModeForce)),
		DatabasePath:       ptr.To(c.DatabasePath()),
		MQTT: &RawMQTTConfig{
			Server:      ptr.To(c.MQTTServer()),
			ClientID:    ptr.To(c.MQTTClientID()),
			TopicPrefix: ptr.To(c.MQTTTopicPrefix()),
		},
		Kafka: &RawKafkaConfig{
			Brokers: c.KafkaBrokers(),
			Topic:   ptr.To(c.KafkaTopic()),
		},
	}

	return rawConfig, nil
}

func orDefault[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) rlock() func() {
	if f.c == nil {
		panic("config is nil")
	}
	f.mu.RLock()
	return f.mu.RUnlock
}

func (f *File) ListenAddress() string {
	defer f.rlock()()
	return orDefault(f.c.ListenAddress, defaultFileConfig.ListenAddress)
}

// PollInterval is clamped to the 2-5 second range the panels expect.
func (f *File) PollInterval() time.Duration {
	defer f.rlock()()
	ms := orDefault(f.c.PollIntervalMs, defaultFileConfig.PollIntervalMs)
	if ms < minPollInterval {
		ms = minPollInterval
	}
	if ms > maxPollInterval {
		ms = maxPollInterval
	}
	return time.Duration(ms) * time.Millisecond
}

func (f *File) ChargingPolicy() string {
	defer f.rlock()()
	return orDefault(f.c.ChargingPolicy, defaultFileConfig.ChargingPolicy)
}

func (f *File) Locale() string {
	defer f.rlock()()
	return orDefault(f.c.Locale, defaultFileConfig.Locale)
}

func (f *File) senec() *RawSenecConfig {
	if f.c.Senec == nil {
		return defaultFileConfig.Senec
	}
	return f.c.Senec
}

func (f *File) SenecDeviceIP() string {
	defer f.rlock()()
	return orDefault(f.senec().DeviceIP, defaultFileConfig.Senec.DeviceIP)
}

func (f *File) SenecAPIPath() string {
	defer f.rlock()()
	return orDefault(f.senec().APIPath, defaultFileConfig.Senec.APIPath)
}

func (f *File) SenecDesignCapacityWh() float64 {
	defer f.rlock()()
	return orDefault(f.senec().DesignCapacityWh, defaultFileConfig.Senec.DesignCapacityWh)
}

func (f *File) Wallboxes() []Wallbox {
	defer f.rlock()()
	src := f.c.Wallboxes
	if src == nil {
		src = defaultFileConfig.Wallboxes
	}
	out := make([]Wallbox, len(src))
	copy(out, src)
	return out
}

func (f *File) MinChargePowerW() float64 {
	defer f.rlock()()
	return orDefault(f.c.MinChargePowerW, defaultFileConfig.MinChargePowerW)
}

func modeField(c *RawFileConfig, m ChargingMode) **bool {
	switch m {
	case ModeAutomatic:
		return &c.AutomaticCharging
	case ModeGarage:
		return &c.SunChargingGarage
	case ModeParking:
		return &c.SunChargingParking
	case ModeForce:
		return &c.ForceCharging
	default:
		panic("unknown charging mode " + string(m))
	}
}

func (f *File) ChargingMode(m ChargingMode) bool {
	defer f.rlock()()
	return orDefault(*modeField(f.c, m), *modeField(defaultFileConfig, m))
}

func (f *File) SetChargingMode(m ChargingMode, b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	*modeField(f.c, m) = &b
}

func (f *File) DatabasePath() string {
	defer f.rlock()()
	return orDefault(f.c.DatabasePath, defaultFileConfig.DatabasePath)
}

func (f *File) mqtt() *RawMQTTConfig {
	if f.c.MQTT == nil {
		return defaultFileConfig.MQTT
	}
	return f.c.MQTT
}

func (f *File) MQTTServer() string {
	defer f.rlock()()
	return orDefault(f.mqtt().Server, defaultFileConfig.MQTT.Server)
}

func (f *File) MQTTClientID() string {
	defer f.rlock()()
	return orDefault(f.mqtt().ClientID, defaultFileConfig.MQTT.ClientID)
}

func (f *File) MQTTTopicPrefix() string {
	defer f.rlock()()
	return orDefault(f.mqtt().TopicPrefix, defaultFileConfig.MQTT.TopicPrefix)
}

func (f *File) KafkaBrokers() []string {
	defer f.rlock()()
	if f.c.Kafka == nil {
		return nil
	}
	return append([]string(nil), f.c.Kafka.Brokers...)
}

func (f *File) KafkaTopic() string {
	defer f.rlock()()
	if f.c.Kafka == nil {
		return *defaultFileConfig.Kafka.Topic
	}
	return orDefault(f.c.Kafka.Topic, defaultFileConfig.Kafka.Topic)
}

func (f *File) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.filepath))
	return ext == ".yaml" || ext == ".yml"
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	if f.isYAML() {
		err = yaml.Unmarshal(b, &conf)
	} else {
		err = json.Unmarshal(b, &conf)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}
	if f.filepath == "" {
		return pkgerrors.New("config has no file path")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	if f.isYAML() {
		enc := yaml.NewEncoder(fp)
		enc.SetIndent(2)
		err = enc.Encode(f.c)
		if err == nil {
			err = enc.Close()
		}
	} else {
		enc := json.NewEncoder(fp)
		enc.SetIndent("", "  ")
		err = enc.Encode(f.c)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"listenAddress":      f.ListenAddress(),
		"pollInterval":       f.PollInterval().String(),
		"chargingPolicy":     f.ChargingPolicy(),
		"senecDeviceIP":      f.SenecDeviceIP(),
		"wallboxes":          len(f.Wallboxes()),
		"automaticCharging":  f.ChargingMode(ModeAutomatic),
		"sunChargingGarage":  f.ChargingMode(ModeGarage),
		"sunChargingParking": f.ChargingMode(ModeParking),
		"forceCharging":      f.ChargingMode(ModeForce),
		"databasePath":       f.DatabasePath(),
		"mqttServer":         f.MQTTServer(),
		"kafkaBrokers":       f.KafkaBrokers(),
	}
}
