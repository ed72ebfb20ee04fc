package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var ErrNotConnected = errors.New("mqtt client not connected")

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // ms
)

// Publisher sends a JSON payload to a topic relative to the client's root.
type Publisher interface {
	Publish(topic string, payload any, retained bool) error
}

// Client is a thin paho wrapper scoped to a topic root.
type Client struct {
	topicRoot string
	opts      *paho.ClientOptions
	client    paho.Client
}

func NewClient(brokerURL, clientID, topicRoot string) *Client {
	opts := paho.NewClientOptions().AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	return &Client{
		topicRoot: strings.TrimSuffix(topicRoot, "/"),
		opts:      opts,
	}
}

func (c *Client) Connect() error {
	c.client = paho.NewClient(c.opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect: timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

func (c *Client) Disconnect() {
	if c.client == nil {
		return
	}
	c.client.Disconnect(disconnectQuiesce)
}

// Publish marshals payload and waits for the broker acknowledgement.
func (c *Client) Publish(topic string, payload any, retained bool) error {
	if c.client == nil {
		return ErrNotConnected
	}
	scoped, err := c.scopedTopic(topic)
	if err != nil {
		return err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", scoped, err)
	}

	token := c.client.Publish(scoped, 1, retained, b)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", scoped)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", scoped, err)
	}
	return nil
}

func (c *Client) scopedTopic(topic string) (string, error) {
	if topic == "" {
		return "", errors.New("topic is empty")
	}
	if topic[0] == '/' {
		return "", errors.New("expected relative topic (cannot begin with slash)")
	}
	if c.topicRoot == "" {
		return topic, nil
	}
	return c.topicRoot + "/" + topic, nil
}
