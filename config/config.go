package config

import (
	"github.com/go-ini/ini"
)

const defaultConfigFile = "conf.ini"

// ServerConfig ServerConfig
type ServerConfig struct {
	ListenIP   string
	ListenPort int
	Origin     string
	// Secret guards the platform-event ingress endpoints.
	Secret string
}

// MysqlConfig mysql config
type MysqlConfig struct {
	// Source is the DSN without options, e.g. user:pwd@tcp(host:3306)/db
	Source string
}

// RedisConfig redis config. Leave Addr empty to run without the cache.
type RedisConfig struct {
	Addr     string
	Password string
	Db       int
}

// PeerConfig PeerConfig
type PeerConfig struct {
	MaxMessageSize int
	WriteWait      int
	PongWait       int
	PingPeriod     int
}

// PlatformConfig points at the chat platform's REST and webhook roots.
type PlatformConfig struct {
	APIBase     string
	WebhookBase string
	Token       string
}

// Config is the full hub configuration.
type Config struct {
	Server   ServerConfig
	Mysql    MysqlConfig
	Redis    RedisConfig
	Peer     PeerConfig
	Platform PlatformConfig
}

// LoadConfig LoadConfig
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	var config Config
	if err = cfg.Section("server").MapTo(&config.Server); err != nil {
		return nil, err
	}
	if err = cfg.Section("mysql").MapTo(&config.Mysql); err != nil {
		return nil, err
	}
	if err = cfg.Section("redis").MapTo(&config.Redis); err != nil {
		return nil, err
	}
	if err = cfg.Section("peer").MapTo(&config.Peer); err != nil {
		return nil, err
	}
	if err = cfg.Section("platform").MapTo(&config.Platform); err != nil {
		return nil, err
	}
	if config.Server.ListenPort == 0 {
		config.Server.ListenPort = 8080
	}
	return &config, nil
}
