package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config holds the configuration for the market data client
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Category  string // "spot", "linear" or "inverse"; defaults to "linear"
}

// Client is a read-only market data client. It fetches klines and tickers;
// no trading endpoints are exposed.
type Client struct {
	httpClient *bybit_api.Client
	category   string
	testnet    bool
}

// NewClient creates a market data client. Public market endpoints work
// without credentials.
func NewClient(config Config) *Client {
	baseURL := bybit_api.MAINNET
	if config.Testnet {
		baseURL = bybit_api.TESTNET
	}
	if config.Category == "" {
		config.Category = "linear"
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	return &Client{
		httpClient: httpClient,
		category:   config.Category,
		testnet:    config.Testnet,
	}
}

// IsTestnet returns whether the client points at the testnet
func (c *Client) IsTestnet() bool {
	return c.testnet
}

// KlineParams holds parameters for one kline request
type KlineParams struct {
	Symbol    string
	Timeframe types.Timeframe
	Start     *time.Time
	End       *time.Time
	Limit     int // max 1000, default 200
}

// GetKlines fetches one page of candles. The exchange returns newest first;
// the result is sorted oldest first.
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]types.Candle, error) {
	if params.Limit <= 0 {
		params.Limit = 200
	}
	if params.Limit > 1000 {
		params.Limit = 1000
	}

	reqParams := map[string]interface{}{
		"category": c.category,
		"symbol":   params.Symbol,
		"interval": params.Timeframe.BybitInterval(),
		"limit":    params.Limit,
	}
	if params.Start != nil {
		reqParams["start"] = params.Start.UnixMilli()
	}
	if params.End != nil {
		reqParams["end"] = params.End.UnixMilli()
	}

	result, err := c.RetryableAPICall(ctx, "get klines", func() (interface{}, error) {
		return c.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
	})
	if err != nil {
		return nil, err
	}

	candles, err := parseKlineResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kline response: %w", err)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

// GetHistory pages through klines until the full [start, end) range is
// covered, oldest first
func (c *Client) GetHistory(ctx context.Context, symbol string, tf types.Timeframe, start, end time.Time) ([]types.Candle, error) {
	var all []types.Candle
	cursor := start

	for cursor.Before(end) {
		page, err := c.GetKlines(ctx, KlineParams{
			Symbol:    symbol,
			Timeframe: tf,
			Start:     &cursor,
			End:       &end,
			Limit:     1000,
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		next := page[len(page)-1].Timestamp.Add(tf.Duration())
		if !next.After(cursor) {
			break
		}
		cursor = next
	}

	return all, nil
}

// GetLatestPrice returns the last traded price for a symbol
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}

	result, err := c.RetryableAPICall(ctx, "get latest price", func() (interface{}, error) {
		return c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	})
	if err != nil {
		return 0, err
	}

	price, err := parseLatestPriceResponse(result)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ticker response: %w", err)
	}
	return price, nil
}

// parseKlineResponse parses the API response into candles
func parseKlineResponse(response interface{}) ([]types.Candle, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}
	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return nil, err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	var candles []types.Candle
	for _, item := range klineResult.List {
		// Kline format: [startTime, open, high, low, close, volume, turnover]
		if len(item) < 6 {
			continue
		}
		candles = append(candles, types.Candle{
			Timestamp: time.UnixMilli(parseInt64(item[0])),
			Open:      parseFloat64(item[1]),
			High:      parseFloat64(item[2]),
			Low:       parseFloat64(item[3]),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}

	return candles, nil
}

// parseLatestPriceResponse extracts the last price from a ticker response
func parseLatestPriceResponse(response interface{}) (float64, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}
	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return 0, err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	var tickerResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &tickerResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ticker result: %w", err)
	}

	if len(tickerResult.List) == 0 {
		return 0, fmt.Errorf("no ticker data found")
	}
	return parseFloat64(tickerResult.List[0].LastPrice), nil
}

func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
