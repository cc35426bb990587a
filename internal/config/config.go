package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
}

type Server struct {
	ListenAddr     string `yaml:"listenAddr"`
	PostgresDsn    string `yaml:"postgresDsn"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisPassword  string `yaml:"redisPassword"`
	RedisDB        int    `yaml:"redisDB"`
	MemcachedAddr  string `yaml:"memcachedAddr"`
	SearchCacheTTL int    `yaml:"searchCacheTTLSeconds"`
	UploadDir      string `yaml:"uploadDir"`
	EnableTrace    bool   `yaml:"enableTrace"`
	TraceEndpoint  string `yaml:"traceEndpoint"`
}

type Auth struct {
	JWTSecret   string `yaml:"jwtSecret"`
	TokenTTLMin int    `yaml:"tokenTTLMinutes"`
}

// TokenTTL is the configured bearer-token lifetime.
func (a Auth) TokenTTL() time.Duration {
	if a.TokenTTLMin <= 0 {
		return time.Hour
	}
	return time.Duration(a.TokenTTLMin) * time.Minute
}

// SearchTTL is the configured listing-cache lifetime.
func (s Server) SearchTTL() time.Duration {
	if s.SearchCacheTTL <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.SearchCacheTTL) * time.Second
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.Server.UploadDir == "" {
		config.Server.UploadDir = "identity_docs"
	}

	return config, nil
}
