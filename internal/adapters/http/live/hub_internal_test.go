package live

import (
	"context"
	"testing"

	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/pkg/logger"
)

func TestHub_DropsSlowSubscriber(t *testing.T) {
	_ = logger.Init()
	h := NewHub(WithLogger(logger.Nop()))
	slow := &client{hub: h, send: make(chan []byte, 1), room: "r1"}
	h.register(slow)

	ctx := context.Background()
	sb := types.Scoreboard{RegattaID: "r1"}
	if err := h.Publish(ctx, sb); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if h.Clients() != 1 {
		t.Fatalf("expected subscriber to survive the first publish")
	}
	if err := h.Publish(ctx, sb); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if h.Clients() != 0 {
		t.Errorf("expected slow subscriber to be dropped, have %d", h.Clients())
	}

	// The buffered message is still readable, then the channel is closed.
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("expected send channel to be closed")
	}

	// Publishing to an empty room is a no-op.
	if err := h.Publish(ctx, sb); err != nil {
		t.Errorf("publish to empty room: %v", err)
	}
}
