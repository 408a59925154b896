package connectors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"signaltracker/src/model"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultYahooBaseURL = "https://query1.finance.yahoo.com"
	chartPath           = "/v8/finance/chart/{symbol}"
	yahooUserAgent      = "Mozilla/5.0 (signaltracker)"
)

var ErrNoData = errors.New("no market data")

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		PreviousClose      float64 `json:"previousClose"`
		RegularMarketTime  int64   `json:"regularMarketTime"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// YahooClient reads quotes and OHLCV history for stocks and indices from the
// Yahoo Finance chart API.
type YahooClient struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Entry
}

func NewYahooClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *YahooClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultYahooBaseURL
		logger.Warnf("No base URL provided, using default: %s", baseURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", yahooUserAgent).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &YahooClient{
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.WithField("connector", "yahoo"),
	}
}

func (c *YahooClient) chart(ctx context.Context, symbol, rng, interval string) (*chartResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var out chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"range":    rng,
			"interval": interval,
		}).
		SetResult(&out).
		Get(chartPath)
	if err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Error("chart request failed")
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo chart %s: http %d", symbol, resp.StatusCode())
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, out.Chart.Error.Code, out.Chart.Error.Description)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}

	c.log.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"range":    rng,
		"interval": interval,
		"points":   len(out.Chart.Result[0].Timestamp),
	}).Debug("chart fetched")

	return &out.Chart.Result[0], nil
}

// Quote returns the last price and the previous session close.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (price, prevClose float64, err error) {
	res, err := c.chart(ctx, symbol, "5d", "1d")
	if err != nil {
		return 0, 0, err
	}
	price = res.Meta.RegularMarketPrice
	prevClose = res.Meta.PreviousClose
	if prevClose == 0 {
		prevClose = res.Meta.ChartPreviousClose
	}
	if price == 0 {
		if bars := res.bars(symbol); len(bars) > 0 {
			price = bars[len(bars)-1].Close.InexactFloat64()
		}
	}
	return price, prevClose, nil
}

// Bars returns OHLCV history for symbol, oldest first, skipping empty points.
func (c *YahooClient) Bars(ctx context.Context, symbol, rng, interval string) ([]model.Bar, error) {
	res, err := c.chart(ctx, symbol, rng, interval)
	if err != nil {
		return nil, err
	}
	bars := res.bars(symbol)
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	return bars, nil
}

func (r *chartResult) bars(symbol string) []model.Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	out := make([]model.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, h, l, cl := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			continue
		}
		vol := decimal.Zero
		if v := at(q.Volume, i); v != nil {
			vol = decimal.NewFromFloat(*v)
		}
		out = append(out, model.Bar{
			Symbol:   symbol,
			Datetime: time.Unix(ts, 0).UTC(),
			Open:     decimal.NewFromFloat(*o),
			High:     decimal.NewFromFloat(*h),
			Low:      decimal.NewFromFloat(*l),
			Close:    decimal.NewFromFloat(*cl),
			Volume:   vol,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Datetime.Before(out[j].Datetime) })
	return out
}

func at(v []*float64, i int) *float64 {
	if i >= len(v) {
		return nil
	}
	return v[i]
}
