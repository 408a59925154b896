package connectors

import (
	"context"
	"fmt"
	"time"

	"signaltracker/src/indicators"
	"signaltracker/src/model"
	"signaltracker/src/tp_sl"

	logger "github.com/sirupsen/logrus"
)

const (
	DelayStock  = "15-20min delayed"
	DelayCrypto = "near-realtime"

	atrLookbackRange = "1mo"
	atrLookbackDays  = 30
	snapshotRange    = "1y"
	snapshotDays     = 365
	hourlyRange      = "60d"
	binanceMaxKlines = 1000
)

// Regime labels derived from the volatility index.
const (
	RegimeHighVol      = "High-Vol Event"
	RegimeBear         = "Trending Bear"
	RegimeChoppy       = "Choppy / Range"
	RegimeTrendingBull = "Trending Bull"
)

// RegimeFromVIX maps a volatility index level to a market regime label.
func RegimeFromVIX(vix float64) string {
	switch {
	case vix > 30:
		return RegimeHighVol
	case vix > 25:
		return RegimeBear
	case vix > 20:
		return RegimeChoppy
	default:
		return RegimeTrendingBull
	}
}

type sessionSource interface {
	Session(asset model.AssetClass, now time.Time) model.Session
}

type stockSource interface {
	Quote(ctx context.Context, symbol string) (price, prevClose float64, err error)
	Bars(ctx context.Context, symbol, rng, interval string) ([]model.Bar, error)
}

type cryptoSource interface {
	Quote(symbol string) (price, prevClose float64, err error)
	DailyBars(symbol string, limit int) ([]model.Bar, error)
	HourlyBars(symbol string, limit int) ([]model.Bar, error)
}

// MarketProvider serves prices, ATR, indicator snapshots and the market
// context to the signal engine. Stocks and indices come from Yahoo, crypto
// from Binance with Yahoo's <SYMBOL>-USD series as a fallback.
type MarketProvider struct {
	stocks    stockSource
	crypto    cryptoSource
	sessions  sessionSource
	vix       string
	benchmark string
	now       func() time.Time
	log       *logger.Entry
}

func NewMarketProvider(cfg Config, sessions sessionSource) *MarketProvider {
	return &MarketProvider{
		stocks:    NewYahooClient(cfg.YahooBaseURL, cfg.Timeout, cfg.RateLimit),
		crypto:    NewBinanceClient(cfg.BinanceBaseURL, cfg.CryptoQuote, cfg.Timeout),
		sessions:  sessions,
		vix:       cfg.VIXSymbol,
		benchmark: cfg.BenchmarkSymbol,
		now:       time.Now,
		log:       logger.WithField("component", "market_provider"),
	}
}

func yahooSymbol(symbol string, asset model.AssetClass) string {
	if asset == model.AssetCrypto && !hasUSDSuffix(symbol) {
		return symbol + "-USD"
	}
	return symbol
}

func hasUSDSuffix(s string) bool {
	return len(s) > 4 && s[len(s)-4:] == "-USD"
}

// GetPrice returns a validated quote. A non-positive price is an error.
func (p *MarketProvider) GetPrice(ctx context.Context, symbol string, asset model.AssetClass) (model.PriceQuote, error) {
	var price, prev float64
	var err error
	source := "yahoo_chart"

	if asset == model.AssetCrypto {
		source = "binance_ticker"
		price, prev, err = p.crypto.Quote(symbol)
		if err != nil {
			p.log.WithError(err).WithField("symbol", symbol).Warn("crypto quote failed, falling back to yahoo")
			source = "yahoo_chart"
			price, prev, err = p.stocks.Quote(ctx, yahooSymbol(symbol, asset))
		}
	} else {
		price, prev, err = p.stocks.Quote(ctx, symbol)
	}
	if err != nil {
		return model.PriceQuote{}, err
	}
	if price <= 0 {
		return model.PriceQuote{}, fmt.Errorf("%s: no price", symbol)
	}
	if prev <= 0 {
		prev = price
	}

	now := p.now()
	stale := asset == model.AssetStock &&
		p.sessions.Session(asset, now) == model.SessionRegular &&
		price == prev

	delay := DelayStock
	if asset == model.AssetCrypto {
		delay = DelayCrypto
	}

	return model.PriceQuote{
		Symbol:       symbol,
		Price:        tp_sl.Round(price, 4),
		PrevClose:    tp_sl.Round(prev, 4),
		GapPct:       tp_sl.PctChange(prev, price),
		IsStale:      stale,
		DelayWarning: delay,
		Source:       source,
		FetchedAt:    now.UTC(),
	}, nil
}

func (p *MarketProvider) dailyBars(ctx context.Context, symbol string, asset model.AssetClass, rng string, days int) ([]model.Bar, error) {
	if asset == model.AssetCrypto {
		bars, err := p.crypto.DailyBars(symbol, days)
		if err == nil {
			return bars, nil
		}
		p.log.WithError(err).WithField("symbol", symbol).Warn("crypto bars failed, falling back to yahoo")
	}
	return p.stocks.Bars(ctx, yahooSymbol(symbol, asset), rng, "1d")
}

func (p *MarketProvider) hourlyBars(ctx context.Context, symbol string, asset model.AssetClass) ([]model.Bar, error) {
	if asset == model.AssetCrypto {
		if bars, err := p.crypto.HourlyBars(symbol, binanceMaxKlines); err == nil {
			return bars, nil
		}
	}
	return p.stocks.Bars(ctx, yahooSymbol(symbol, asset), hourlyRange, "1h")
}

// GetATR14 is the 14-period average true range over the last month of daily bars.
func (p *MarketProvider) GetATR14(ctx context.Context, symbol string, asset model.AssetClass) (float64, error) {
	bars, err := p.dailyBars(ctx, symbol, asset, atrLookbackRange, atrLookbackDays)
	if err != nil {
		return 0, err
	}
	atr, err := indicators.ATR(bars, 14)
	if err != nil {
		return 0, fmt.Errorf("%s atr14 from %d bars: %w", symbol, len(bars), err)
	}
	return atr, nil
}

// GetIndicatorSnapshot computes the technical picture at this moment. Missing
// hourly data only leaves the intraday trend keys MIXED.
func (p *MarketProvider) GetIndicatorSnapshot(ctx context.Context, symbol string, asset model.AssetClass) (map[string]any, error) {
	daily, err := p.dailyBars(ctx, symbol, asset, snapshotRange, snapshotDays)
	if err != nil {
		return indicators.ErrorSnapshot(err, p.now()), err
	}
	hourly, err := p.hourlyBars(ctx, symbol, asset)
	if err != nil {
		p.log.WithError(err).WithField("symbol", symbol).Debug("hourly bars unavailable")
		hourly = nil
	}
	snap, err := indicators.Snapshot(daily, hourly, p.now())
	if err != nil {
		return indicators.ErrorSnapshot(err, p.now()), err
	}
	return snap, nil
}

// GetMarketContext reads the volatility index and the benchmark. On failure
// the context carries regime "unknown" and the error text along with the error.
func (p *MarketProvider) GetMarketContext(ctx context.Context) (model.MarketContext, error) {
	now := p.now().UTC()

	vixBars, err := p.stocks.Bars(ctx, p.vix, "5d", "1d")
	if err != nil {
		return model.MarketContext{Regime: model.RegimeUnknown, Timestamp: now, Error: err.Error()}, err
	}
	spyBars, err := p.stocks.Bars(ctx, p.benchmark, "5d", "1d")
	if err != nil {
		return model.MarketContext{Regime: model.RegimeUnknown, Timestamp: now, Error: err.Error()}, err
	}

	vix := vixBars[len(vixBars)-1].Close.InexactFloat64()
	spyClose := spyBars[len(spyBars)-1].Close.InexactFloat64()
	spyPrev := spyClose
	if len(spyBars) >= 2 {
		spyPrev = spyBars[len(spyBars)-2].Close.InexactFloat64()
	}

	return model.MarketContext{
		VIX:          tp_sl.Round(vix, 1),
		SPYClose:     tp_sl.Round(spyClose, 2),
		SPYChangePct: tp_sl.PctChange(spyPrev, spyClose),
		Regime:       RegimeFromVIX(vix),
		Timestamp:    now,
	}, nil
}
