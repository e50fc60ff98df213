package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	pmqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"heat-alert-service/internal/ingest"
	"heat-alert-service/internal/logging"
)

const (
	subscribeQoS   = 1
	connectTimeout = 10 * time.Second
	disconnectWait = 250 // milliseconds
)

// Ingester accepts raw reading payloads.
type Ingester interface {
	IngestJSON(ctx context.Context, raw []byte, source string) (ingest.Result, error)
}

// Subscriber feeds readings published on an MQTT topic into the gateway.
type Subscriber struct {
	Topic    string
	ingester Ingester
	logger   *logging.Logger
	opt      *pmqtt.ClientOptions
	client   pmqtt.Client
}

// NewSubscriber prepares a client for broker. Connect starts it.
func NewSubscriber(broker, topic string, ingester Ingester, logger *logging.Logger) *Subscriber {
	s := &Subscriber{
		Topic:    topic,
		ingester: ingester,
		logger:   logger,
	}
	s.opt = pmqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("heat-alert-" + uuid.NewString()).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectionLostHandler(s.connectLostHandler()).
		SetOnConnectHandler(s.connectHandler())
	return s
}

// Connect dials the broker and subscribes. The client disconnects when ctx is done.
func (s *Subscriber) Connect(ctx context.Context) error {
	s.client = pmqtt.NewClient(s.opt)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.New("timed out connecting to mqtt broker")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to mqtt broker: %w", err)
	}

	go func() {
		<-ctx.Done()
		s.client.Disconnect(disconnectWait)
		s.logger.Info("Disconnected from mqtt broker")
	}()
	return nil
}

// Subscriptions are renewed on every (re)connect.
func (s *Subscriber) connectHandler() pmqtt.OnConnectHandler {
	return func(client pmqtt.Client) {
		s.logger.Infof("Connected to mqtt broker, subscribing to %s", s.Topic)
		token := client.Subscribe(s.Topic, subscribeQoS, s.messageHandler())
		go func() {
			if token.Wait() && token.Error() != nil {
				s.logger.Errorf("Subscribe to %s failed: %v", s.Topic, token.Error())
			}
		}()
	}
}

func (s *Subscriber) connectLostHandler() pmqtt.ConnectionLostHandler {
	return func(_ pmqtt.Client, err error) {
		s.logger.Warnf("MQTT connection lost: %v", err)
	}
}

func (s *Subscriber) messageHandler() pmqtt.MessageHandler {
	return func(_ pmqtt.Client, msg pmqtt.Message) {
		if _, err := s.ingester.IngestJSON(context.Background(), msg.Payload(), "mqtt"); err != nil {
			s.logger.Errorf("Ingest MQTT message on %s failed: %v", msg.Topic(), err)
		}
	}
}
