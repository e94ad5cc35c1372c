package binance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-scanner/business/exchange/domain"
	"github.com/fd1az/arb-scanner/internal/logger"
)

// mockStreamServer accepts connections and pushes the given frames.
func mockStreamServer(t *testing.T, frames [][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := context.Background()
		for _, frame := range frames {
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				return
			}
		}
		time.Sleep(2 * time.Second)
	}))
}

func TestStreamTickers(t *testing.T) {
	event, err := json.Marshal(streamEvent{
		Stream: "btcusdt@bookTicker",
		Data:   json.RawMessage(`{"s":"BTCUSDT","b":"50000.5","B":"1","a":"50001.5","A":"2"}`),
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	server := mockStreamServer(t, [][]byte{
		[]byte("not json"), // parse errors must not kill the feed
		event,
	})
	defer server.Close()

	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	conn, err := New(Config{WSURL: "ws" + strings.TrimPrefix(server.URL, "http")}, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := conn.StreamTickers(ctx, nil); err == nil {
		t.Error("expected error for empty symbol list")
	}

	tickers, err := conn.StreamTickers(ctx, []domain.Symbol{domain.NewSymbol("BTC", "USDT")})
	if err != nil {
		t.Fatalf("StreamTickers: %v", err)
	}

	select {
	case tick := <-tickers:
		if tick.Exchange != Name || tick.Symbol.String() != "BTC/USDT" {
			t.Errorf("ticker identity = %s %s", tick.Exchange, tick.Symbol)
		}
		if !tick.Bid.Equal(decimal.RequireFromString("50000.5")) ||
			!tick.Ask.Equal(decimal.RequireFromString("50001.5")) {
			t.Errorf("quote = %s / %s", tick.Bid, tick.Ask)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no ticker received")
	}
}
