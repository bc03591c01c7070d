package config

import (
	"os"
	"strconv"
	"strings"
)

// Server captures process-level configuration so main stays lean. Defaults
// keep `go run ./cmd/server` working with in-memory backends and no external
// services.
type Server struct {
	Addr string

	// ContentStore selects the CAS backend: memory, postgres, or ipfs.
	ContentStore string
	PostgresURL  string
	IPFSAPIURL   string

	// KafkaBrokers empty means anchors go to the in-process ledger topic.
	KafkaBrokers []string
	AnchorTopic  string

	// RedisURL empty disables the DID resolution cache.
	RedisURL string

	// IssuerDID/IssuerPrivateKey empty means the server creates a fresh
	// issuer identity at startup and logs it.
	IssuerDID        string
	IssuerPrivateKey string

	// InitialBalance funds each newly created ledger account.
	InitialBalance uint64
	// OperatorBalance seeds the devnet ledger operator.
	OperatorBalance uint64
}

func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("CREDANCHOR_ADDR", ":8080"),
		ContentStore:     envOr("CONTENT_STORE", "memory"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		IPFSAPIURL:       envOr("IPFS_API_URL", "http://127.0.0.1:5001"),
		AnchorTopic:      envOr("ANCHOR_TOPIC", "credanchor.anchors"),
		RedisURL:         os.Getenv("REDIS_URL"),
		IssuerDID:        os.Getenv("ISSUER_DID"),
		IssuerPrivateKey: os.Getenv("ISSUER_PRIVATE_KEY"),
		InitialBalance:   envUint("INITIAL_BALANCE", 1000),
		OperatorBalance:  envUint("OPERATOR_BALANCE", 100_000_000),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
