package sink

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes every reading as one message to a single topic, keyed by
// the reading name.
type Kafka struct {
	topic  string
	writer messageWriter
	now    func() time.Time
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, pkgerrors.New("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, pkgerrors.New("kafka topic must not be empty")
	}

	logrus.WithFields(logrus.Fields{
		"brokers": brokers,
		"topic":   topic,
	}).Info("publishing snapshots to kafka")

	return newKafkaWithWriter(topic, &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 100 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logrus.WithField("topic", topic).Errorf(msg, args...)
		}),
	}), nil
}

func newKafkaWithWriter(topic string, w messageWriter) *Kafka {
	return &Kafka{topic: topic, writer: w, now: time.Now}
}

func (k *Kafka) Publish(ctx context.Context, key string, payload []byte) error {
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  k.now(),
	})
	return pkgerrors.Wrapf(err, "failed to write %s to kafka topic %s", key, k.topic)
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
