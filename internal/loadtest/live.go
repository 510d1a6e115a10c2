package loadtest

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/okian/regatta/pkg/logger"
)

// subscriber counts scoreboard messages received from the live feed.
type subscriber struct {
	conn     *websocket.Conn
	received atomic.Int64
	done     chan struct{}
}

func subscribe(ctx context.Context, baseURL, regattaID string) (*subscriber, error) {
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/regattas/" + regattaID + "/live"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	s := &subscriber{conn: conn, done: make(chan struct{})}
	go s.read()
	return s, nil
}

func (s *subscriber) read() {
	defer close(s.done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Get().Debug(context.Background(), "live feed closed", logger.Error(err))
			}
			return
		}
		s.received.Add(1)
	}
}

// Received returns the number of messages read so far.
func (s *subscriber) Received() int {
	return int(s.received.Load())
}

// Close ends the subscription and waits for the reader to stop.
func (s *subscriber) Close() {
	_ = s.conn.Close()
	<-s.done
}
