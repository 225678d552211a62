package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"binary_bot/internal/models"
)

// FetchBars тянет закрытые свечи по инструменту.
// Ряд данных: [ts, o, h, l, c, ...], newest-first → разворачиваем.
func (c *Client) FetchBars(ctx context.Context, symbol, interval string, limit int) (models.BarSeries, error) {
	if limit <= 0 {
		limit = 100
	}
	bar, err := providerBar(interval)
	if err != nil {
		return models.BarSeries{}, &ProviderError{Symbol: symbol, Op: "candles", Err: err}
	}

	u := fmt.Sprintf("%s/api/v5/market/candles?instId=%s&bar=%s&limit=%d",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(bar), limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.BarSeries{}, &ProviderError{Symbol: symbol, Op: "candles", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.BarSeries{}, &ProviderError{Symbol: symbol, Op: "candles", Err: err}
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return models.BarSeries{}, &ProviderError{
			Symbol: symbol, Op: "candles",
			Err: fmt.Errorf("http %d: %s", resp.StatusCode, string(b)),
		}
	}

	var r struct {
		Code string     `json:"code"`
		Msg  string     `json:"msg"`
		Data [][]string `json:"data"`
	}
	if err = json.Unmarshal(b, &r); err != nil {
		return models.BarSeries{}, &ProviderError{Symbol: symbol, Op: "candles", Err: err}
	}
	if r.Code != "0" {
		return models.BarSeries{}, &ProviderError{
			Symbol: symbol, Op: "candles",
			Err: fmt.Errorf("provider code=%s msg=%s", r.Code, r.Msg),
		}
	}

	out := models.BarSeries{Symbol: symbol, Interval: interval, Bars: make([]models.Bar, 0, len(r.Data))}
	for i := len(r.Data) - 1; i >= 0; i-- {
		row := r.Data[i]
		if len(row) < 5 {
			continue
		}

		tsMs, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		open, _ := strconv.ParseFloat(row[1], 64)
		high, _ := strconv.ParseFloat(row[2], 64)
		low, _ := strconv.ParseFloat(row[3], 64)
		closep, _ := strconv.ParseFloat(row[4], 64)
		if closep <= 0 {
			continue
		}

		out.Bars = append(out.Bars, models.Bar{
			Open:  open,
			High:  high,
			Low:   low,
			Close: closep,
			Time:  time.UnixMilli(tsMs),
		})
	}

	return out, nil
}

// providerBar: "15m" -> "15m", "1h" -> "1H", "1d" -> "1D".
func providerBar(interval string) (string, error) {
	if interval == "" {
		return "", fmt.Errorf("empty interval")
	}
	unit := interval[len(interval)-1]
	switch unit {
	case 'm', 's':
		return interval, nil
	case 'h', 'd', 'w':
		return interval[:len(interval)-1] + strings.ToUpper(string(unit)), nil
	}
	return "", fmt.Errorf("unsupported interval %q", interval)
}
