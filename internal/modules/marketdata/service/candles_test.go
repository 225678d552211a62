package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchBars(t *testing.T) {
	// newest-first, как отдаёт провайдер
	payload := `{"code":"0","msg":"","data":[
		["120000","1.0020","1.0030","1.0010","1.0025","0"],
		["60000","1.0010","1.0025","1.0005","1.0020","0"],
		["0","1.0000","1.0015","0.9995","1.0010","0"]
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("instId"); got != "EUR-USD" {
			t.Errorf("instId = %q", got)
		}
		if got := r.URL.Query().Get("bar"); got != "15m" {
			t.Errorf("bar = %q", got)
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	series, err := c.FetchBars(context.Background(), "EUR-USD", "15m", 3)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if series.Symbol != "EUR-USD" || series.Interval != "15m" {
		t.Errorf("series meta: %+v", series)
	}
	if len(series.Bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(series.Bars))
	}
	// после разворота бары идут по времени
	if series.Bars[0].Close != 1.0010 || series.Bars[2].Close != 1.0025 {
		t.Errorf("bars not oldest-first: %+v", series.Bars)
	}
	if !series.Bars[0].Time.Before(series.Bars[2].Time) {
		t.Errorf("timestamps not ascending")
	}
}

func TestFetchBars_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"50011","msg":"rate limit","data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.FetchBars(context.Background(), "EUR-USD", "15m", 10)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("want *ProviderError, got %v", err)
	}
	if perr.Symbol != "EUR-USD" || perr.Op != "candles" {
		t.Errorf("unexpected error fields: %+v", perr)
	}
}

func TestProviderBar(t *testing.T) {
	cases := []struct {
		in, want string
		ok       bool
	}{
		{"1m", "1m", true},
		{"15m", "15m", true},
		{"1h", "1H", true},
		{"4h", "4H", true},
		{"1d", "1D", true},
		{"", "", false},
		{"15x", "", false},
	}
	for _, tc := range cases {
		got, err := providerBar(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("providerBar(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("providerBar(%q): want error", tc.in)
		}
	}
}
