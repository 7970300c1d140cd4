package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3001"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9091"`

	// ControlSecret - ключ HS256 для локального управляющего API
	ControlSecret string `env:"CONTROL_SECRET,required"`

	// AccessToken - JWT, полученный при логине, из него берется userId
	AccessToken string `env:"ACCESS_TOKEN,required"`

	// APIURL - базовый адрес REST API для истории сообщений
	APIURL string `env:"API_URL" envDefault:"http://localhost:8080/api"`

	TurnUDPServer webrtc.ICEServer
	TurnTCPServer webrtc.ICEServer

	Socket SocketConfig
	Call   CallConfig
	Turn   TurnConfig
}

type SocketConfig struct {
	URL string `env:"SIGNALING_URL,required"`

	ReconnectInterval time.Duration `env:"SOCKET_RECONNECT_INTERVAL" envDefault:"3s"`
	HeartbeatInterval time.Duration `env:"SOCKET_HEARTBEAT_INTERVAL" envDefault:"30s"`
	HandshakeTimeout  time.Duration `env:"SOCKET_HANDSHAKE_TIMEOUT" envDefault:"10s"`
}

type CallConfig struct {
	// RingTimeout в секундах. Максимум проверяет сервер, клиент только передает значение.
	RingTimeout int `env:"CALL_TIMEOUT" envDefault:"40"`
}

type TurnConfig struct {
	Host     string `env:"TURN_HOST"`
	Username string `env:"TURN_USERNAME"`
	Password string `env:"TURN_PASSWORD"`
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err = c.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if c.Turn.Host != "" {
		c.TurnUDPServer = webrtc.ICEServer{
			URLs:       []string{fmt.Sprintf("turn:%s?transport=udp", c.Turn.Host)},
			Username:   c.Turn.Username,
			Credential: c.Turn.Password,
		}

		c.TurnTCPServer = webrtc.ICEServer{
			URLs:       []string{fmt.Sprintf("turn:%s?transport=tcp", c.Turn.Host)},
			Username:   c.Turn.Username,
			Credential: c.Turn.Password,
		}
	}

	return &c, nil
}

// ICEServers возвращает сконфигурированные TURN сервера для передачи медиа-провайдеру
func (c *Config) ICEServers() []webrtc.ICEServer {
	var servers []webrtc.ICEServer

	for _, s := range []webrtc.ICEServer{c.TurnUDPServer, c.TurnTCPServer} {
		if len(s.URLs) > 0 {
			servers = append(servers, s)
		}
	}

	return servers
}

func (c *Config) validate() error {
	if c.Call.RingTimeout <= 0 {
		return errors.New("CALL_TIMEOUT must be positive")
	}

	if c.Socket.ReconnectInterval <= 0 || c.Socket.HeartbeatInterval <= 0 {
		return errors.New("socket intervals must be positive")
	}

	return nil
}
