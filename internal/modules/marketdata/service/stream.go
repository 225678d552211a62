package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// StreamPrice — поток последних цен по инструменту. Канал закрывается
// при отмене ctx или после исчерпания ретраев. Последняя цена параллельно
// оседает в кэше (GetPrice).
func (c *Client) StreamPrice(ctx context.Context, symbol string) <-chan float64 {
	ch := make(chan float64)
	go func() {
		defer close(ch)
		retry := 0
		for {
			conn, _, err := c.wsDialer.Dial(c.wsURL, nil)
			if err != nil {
				retry++
				if retry > 8 {
					return
				}
				time.Sleep(time.Duration(300*retry) * time.Millisecond)
				continue
			}
			retry = 0
			_ = conn.WriteJSON(map[string]any{
				"op":   "subscribe",
				"args": []map[string]string{{"channel": "tickers", "instId": symbol}},
			})

			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(15 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-stopPing:
						return
					case <-ctx.Done():
						_ = conn.Close()
						return
					case <-t.C:
						_ = conn.WriteMessage(websocket.TextMessage, []byte("ping"))
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					close(stopPing)
					_ = conn.Close()
					break
				}
				if last, ok := parseTicker(msg); ok {
					c.SetPrice(symbol, last)
					select {
					case ch <- last:
					case <-ctx.Done():
						close(stopPing)
						_ = conn.Close()
						return
					}
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(1 * time.Second)
			}
		}
	}()
	return ch
}

func parseTicker(msg []byte) (float64, bool) {
	var frame struct {
		Arg struct {
			Channel string `json:"channel"`
		} `json:"arg"`
		Data []struct {
			Last string `json:"last"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg, &frame); err != nil {
		return 0, false
	}
	if frame.Arg.Channel != "tickers" || len(frame.Data) == 0 {
		return 0, false
	}
	last, err := strconv.ParseFloat(frame.Data[0].Last, 64)
	if err != nil {
		return 0, false
	}
	return last, last != 0
}
