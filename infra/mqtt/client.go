package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ovms-community/ovms-bridge/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker         string `json:"broker"`
	ClientID       string `json:"client_id"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	UseTLS         bool   `json:"use_tls"`
	VerifyTLS      *bool  `json:"verify_tls"`
	ClientCert     string `json:"client_cert"`
	ClientKey      string `json:"client_key"`
	CABundle       string `json:"ca_bundle"`
	QoS            byte   `json:"qos"`
	ConnectTimeout int    `json:"connect_timeout_seconds"`

	TLSConfig *tls.Config `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "ovms-bridge"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5
	}
	if c.QoS > 2 {
		c.QoS = 1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	return nil
}

// LoadTLSConfig builds the TLS configuration from the config file paths.
// With no client certificate configured it returns a default config
// honoring the verify flag, for brokers with server-side TLS only.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.VerifyTLS != nil && !*c.VerifyTLS {
		cfg.InsecureSkipVerify = true
	}
	if c.CABundle != "" {
		caBytes, err := os.ReadFile(c.CABundle)
		if err != nil {
			return nil, fmt.Errorf("read ca: %w", err)
		}
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(caBytes)
		cfg.RootCAs = pool
	}
	if c.ClientCert != "" || c.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoClient is the shared broker connection. Discovery and the runtime
// bridge acquire scoped subscriptions on it.
type PahoClient struct {
	cli    pahoClient
	qos    byte
	logger logger.Logger
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Second)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, &TlsError{Err: err}
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// NewPahoClient connects to the MQTT broker. Connect failures are returned
// classified per the session error taxonomy.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	opts.OnConnect = func(_ paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, MapSessionError(token.Error())
	}
	return &PahoClient{cli: c, qos: cfg.QoS, logger: log}, nil
}

// QoS returns the configured quality of service.
func (p *PahoClient) QoS() byte { return p.qos }

// Subscribe registers a handler for the topic filter.
func (p *PahoClient) Subscribe(filter string, qos byte, cb paho.MessageHandler) error {
	token := p.cli.Subscribe(filter, qos, cb)
	token.Wait()
	return token.Error()
}

// Unsubscribe releases a subscription.
func (p *PahoClient) Unsubscribe(filter string) error {
	token := p.cli.Unsubscribe(filter)
	token.Wait()
	return token.Error()
}

// Publish sends a payload to a topic.
func (p *PahoClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := p.cli.Publish(topic, qos, retained, payload)
	token.Wait()
	return token.Error()
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
