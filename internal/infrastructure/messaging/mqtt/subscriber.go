package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// DefaultMeasurementTopic — подписка на живые измерения всех буев.
// Второй сегмент топика — идентификатор станции
const DefaultMeasurementTopic = "buoys/+/measurements"

const subscribeQoS = 1

// MeasurementHandler вызывается на каждое декодированное измерение
type MeasurementHandler func(stationID string, measurement entity.Measurement)

// MQTTMeasurementSubscriber слушает живые измерения буев по MQTT.
// Это триггер обновления, не источник истины: по приходу сообщения
// вызывающая сторона перечитывает снимок из hosted backend
type MQTTMeasurementSubscriber struct {
	client paho.Client
	topic  string
	logger *logger.Logger
}

// NewMQTTMeasurementSubscriber создает и подключает подписчика
func NewMQTTMeasurementSubscriber(brokerURL, clientID, topic string, log *logger.Logger) (*MQTTMeasurementSubscriber, error) {
	log = log.WithComponent("mqtt-ingest")
	if topic == "" {
		topic = DefaultMeasurementTopic
	}

	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			log.Info("MQTT connected", "broker", brokerURL)
		}).
		SetConnectionLostHandler(func(c paho.Client, err error) {
			log.Warn("MQTT connection lost", "error", err.Error())
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out: %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	return &MQTTMeasurementSubscriber{
		client: client,
		topic:  topic,
		logger: log,
	}, nil
}

// Subscribe начинает доставку измерений обработчику.
// Кривые сообщения логируются и пропускаются
func (s *MQTTMeasurementSubscriber) Subscribe(handler MeasurementHandler) error {
	token := s.client.Subscribe(s.topic, subscribeQoS, func(_ paho.Client, msg paho.Message) {
		stationID := stationFromTopic(msg.Topic())
		if stationID == "" {
			s.logger.Warn("Dropping message with unexpected topic", "topic", msg.Topic())
			return
		}

		var measurement entity.Measurement
		if err := json.Unmarshal(msg.Payload(), &measurement); err != nil {
			s.logger.Warn("Dropping malformed measurement",
				"topic", msg.Topic(),
				"error", err.Error(),
			)
			return
		}
		if measurement.StationID == "" {
			measurement.StationID = stationID
		}

		handler(stationID, measurement)
	})

	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt subscribe timed out: %s", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.topic, err)
	}

	s.logger.Info("Subscribed to measurements", "topic", s.topic)
	return nil
}

// Close отписывается и разрывает соединение
func (s *MQTTMeasurementSubscriber) Close() error {
	token := s.client.Unsubscribe(s.topic)
	token.WaitTimeout(5 * time.Second)
	s.client.Disconnect(250)
	return nil
}

// stationFromTopic извлекает идентификатор станции из "buoys/<id>/measurements"
func stationFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "buoys" || parts[2] != "measurements" {
		return ""
	}
	return parts[1]
}
