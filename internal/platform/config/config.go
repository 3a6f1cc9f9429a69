package config

import (
	"os"
	"strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	AuthorityAddr string
	AuthorityName string
	JWTSigningKey string

	// Optional backends; empty means in-memory.
	PostgresDSN string
	RedisAddr   string

	// Optional Kafka audit sink; empty brokers disables it.
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays
// lean.
func FromEnv() Server {
	addr := os.Getenv("ATTESTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authorityAddr := os.Getenv("ATTESTRY_AUTHORITY_ADDR")
	if authorityAddr == "" {
		authorityAddr = "authority"
	}
	authorityName := os.Getenv("ATTESTRY_AUTHORITY_NAME")
	if authorityName == "" {
		authorityName = "Registry Authority"
	}

	jwtSigningKey := os.Getenv("ATTESTRY_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("ATTESTRY_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("ATTESTRY_KAFKA_TOPIC")
	if topic == "" {
		topic = "attestry.audit"
	}

	return Server{
		Addr:          addr,
		AuthorityAddr: authorityAddr,
		AuthorityName: authorityName,
		JWTSigningKey: jwtSigningKey,
		PostgresDSN:   os.Getenv("ATTESTRY_POSTGRES_DSN"),
		RedisAddr:     os.Getenv("ATTESTRY_REDIS_ADDR"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
	}
}
