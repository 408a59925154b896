package connectors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"signaltracker/src/model"
	"signaltracker/src/utils"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// spotAPI is the part of goex.API the tracker reads.
type spotAPI interface {
	GetTicker(currency goex.CurrencyPair) (*goex.Ticker, error)
	GetKlineRecords(currency goex.CurrencyPair, period goex.KlinePeriod, size int, optional ...goex.OptionalParameter) ([]goex.Kline, error)
}

// BinanceClient reads crypto spot prices and klines through goex.
type BinanceClient struct {
	exchange spotAPI
	quote    string
	log      *logger.Entry
}

func NewBinanceClient(endpoint, quote string, timeout time.Duration) *BinanceClient {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = binance.GLOBAL_API_BASE_URL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	apiConfig := &goex.APIConfig{
		HttpClient: &http.Client{Timeout: timeout},
		Endpoint:   endpoint,
	}
	return newBinanceClient(binance.NewWithConfig(apiConfig), quote)
}

func newBinanceClient(api spotAPI, quote string) *BinanceClient {
	if quote == "" {
		quote = "USDT"
	}
	return &BinanceClient{
		exchange: api,
		quote:    strings.ToUpper(quote),
		log:      logger.WithField("connector", "binance"),
	}
}

// Pair maps a ticker such as "BTC" or "BTC-USD" to BTC_<quote>.
func (b *BinanceClient) Pair(symbol string) goex.CurrencyPair {
	base := strings.ToUpper(strings.TrimSpace(symbol))
	base = strings.TrimSuffix(base, "-USD")
	return goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: b.quote})
}

// Quote returns the last trade price and the previous daily close.
func (b *BinanceClient) Quote(symbol string) (price, prevClose float64, err error) {
	pair := b.Pair(symbol)
	ticker, err := b.exchange.GetTicker(pair)
	if err != nil {
		b.log.WithError(err).WithField("pair", pair.String()).Error("GetTicker failed")
		return 0, 0, fmt.Errorf("binance ticker %s: %w", pair.String(), err)
	}
	if ticker == nil {
		return 0, 0, fmt.Errorf("binance ticker %s: %w", pair.String(), ErrNoData)
	}
	price = ticker.Last
	prevClose = price

	klines, err := b.exchange.GetKlineRecords(pair, goex.KLINE_PERIOD_1DAY, 2, goex.OptionalParameter{})
	if err != nil {
		b.log.WithError(err).WithField("pair", pair.String()).Warn("previous close unavailable")
		return price, prevClose, nil
	}
	sortKlines(klines)
	if len(klines) >= 2 {
		prevClose = klines[len(klines)-2].Close
	}
	return price, prevClose, nil
}

// DailyBars returns up to limit daily candles, oldest first.
func (b *BinanceClient) DailyBars(symbol string, limit int) ([]model.Bar, error) {
	return b.bars(symbol, goex.KLINE_PERIOD_1DAY, limit)
}

// HourlyBars returns up to limit hourly candles, oldest first.
func (b *BinanceClient) HourlyBars(symbol string, limit int) ([]model.Bar, error) {
	return b.bars(symbol, goex.KLINE_PERIOD_1H, limit)
}

func (b *BinanceClient) bars(symbol string, period goex.KlinePeriod, limit int) ([]model.Bar, error) {
	pair := b.Pair(symbol)
	klines, err := b.exchange.GetKlineRecords(pair, period, limit, goex.OptionalParameter{})
	if err != nil {
		b.log.WithError(err).WithField("pair", pair.String()).Error("GetKlineRecords failed")
		return nil, fmt.Errorf("binance klines %s: %w", pair.String(), err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("binance klines %s: %w", pair.String(), ErrNoData)
	}
	sortKlines(klines)

	out := make([]model.Bar, 0, len(klines))
	for _, k := range klines {
		dt := time.Unix(k.Timestamp, 0).UTC()
		if period == goex.KLINE_PERIOD_1DAY {
			dt = utils.ResetTime(dt, "day")
		}
		out = append(out, model.Bar{
			Symbol:   pair.String(),
			Datetime: dt,
			Open:     decimal.NewFromFloat(k.Open),
			High:     decimal.NewFromFloat(k.High),
			Low:      decimal.NewFromFloat(k.Low),
			Close:    decimal.NewFromFloat(k.Close),
			Volume:   decimal.NewFromFloat(k.Vol),
		})
	}
	return out, nil
}

func sortKlines(k []goex.Kline) {
	sort.SliceStable(k, func(i, j int) bool { return k[i].Timestamp < k[j].Timestamp })
}
