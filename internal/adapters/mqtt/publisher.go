package mqtt

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// Publisher pushes each scored sample to an MQTT topic as JSON, retained,
// so a dashboard that connects late still sees the latest reading.
type Publisher struct {
	client paho.Client
	topic  string
}

var _ ports.Publisher = (*Publisher)(nil)

func NewPublisher(broker, clientID, topic string) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return &Publisher{client: client, topic: topic}, nil
}

func (p *Publisher) Publish(sample domain.ScoredSample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	token := p.client.Publish(p.topic, 0, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
