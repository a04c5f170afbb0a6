package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type config struct {
	Production         bool          `env:"PRODUCTION" envDefault:"false"`
	Port               string        `env:"PORT" envDefault:"8080"`
	ServerURL          string        `env:"SERVER_URL,required"`
	ServerAuthToken    string        `env:"SERVER_AUTH_TOKEN" envDefault:""`
	RedisURL           string        `env:"REDIS_URL" envDefault:"redis:6379"`
	FeedChannel        string        `env:"FEED_CHANNEL" envDefault:"planning:events"`
	Secret             string        `env:"SECRET,required"`
	MaxRecurrentEvents int           `env:"MAX_RECURRENT_EVENTS" envDefault:"200"`
	QueryChunkSize     int           `env:"QUERY_CHUNK_SIZE" envDefault:"100"`
	RetryAttempts      int           `env:"RETRY_ATTEMPTS" envDefault:"5"`
	RetryInterval      time.Duration `env:"RETRY_INTERVAL" envDefault:"1s"`
	RefetchDelay       time.Duration `env:"REFETCH_DELAY" envDefault:"1s"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

var conf config

func init() {
	if err := env.Parse(&conf); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}

func Production() bool {
	return conf.Production
}

func Port() string {
	return conf.Port
}

func ServerURL() string {
	return conf.ServerURL
}

func ServerAuthToken() string {
	return conf.ServerAuthToken
}

func RedisURL() string {
	return conf.RedisURL
}

func FeedChannel() string {
	return conf.FeedChannel
}

func Secret() string {
	return conf.Secret
}

func MaxRecurrentEvents() int {
	return conf.MaxRecurrentEvents
}

func QueryChunkSize() int {
	return conf.QueryChunkSize
}

func RetryAttempts() int {
	return conf.RetryAttempts
}

func RetryInterval() time.Duration {
	return conf.RetryInterval
}

func RefetchDelay() time.Duration {
	return conf.RefetchDelay
}

func RequestTimeout() time.Duration {
	return conf.RequestTimeout
}
