package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	YahooBaseURL    string        `envconfig:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com"`
	BinanceBaseURL  string        `envconfig:"BINANCE_BASE_URL" default:"https://api.binance.com"`
	CryptoQuote     string        `envconfig:"CRYPTO_QUOTE" default:"USDT"`
	RateLimit       float64       `envconfig:"MARKET_DATA_RATE_LIMIT" default:"4"`
	Timeout         time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"15s"`
	VIXSymbol       string        `envconfig:"VIX_SYMBOL" default:"^VIX"`
	BenchmarkSymbol string        `envconfig:"BENCHMARK_SYMBOL" default:"SPY"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
