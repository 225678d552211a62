package service

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultBaseURL = "https://www.okx.com"
	defaultWSURL   = "wss://ws.okx.com:8443/ws/v5/public"
)

// Client ходит за свечами по REST и держит кэш последних цен из WS-потока.
type Client struct {
	baseURL string
	wsURL   string

	http     *http.Client
	wsDialer *websocket.Dialer

	mu     sync.RWMutex
	prices map[string]float64
}

func NewClient(baseURL, wsURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if wsURL == "" {
		wsURL = defaultWSURL
	}
	return &Client{
		baseURL:  baseURL,
		wsURL:    wsURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		wsDialer: &websocket.Dialer{},
		prices:   make(map[string]float64),
	}
}

func (c *Client) SetPrice(symbol string, price float64) {
	c.mu.Lock()
	c.prices[symbol] = price
	c.mu.Unlock()
}

func (c *Client) GetPrice(symbol string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prices[symbol]
}

// ProviderError — типизированная ошибка провайдера котировок,
// чтобы раннер мог отличить её от таймаута контекста.
type ProviderError struct {
	Symbol string
	Op     string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("marketdata: %s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
