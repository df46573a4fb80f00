package cpclient

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/prefsync/prefsync/internal/client/ui"
)

const eventBufferSize = 16

// Events opens the daemon's SSE intent stream. Intents with seq <= after are
// replayed first so a reconnecting frontend can catch up. The returned channel
// closes when ctx is cancelled or the stream ends.
func (c *Client) Events(ctx context.Context, after uint64) (<-chan *ui.Intent, error) {
	// SSE bodies never end on their own, so this request opts out of the
	// client's auto-read and timeout.
	stream := c.http.Clone().
		DisableAutoReadResponse().
		SetTimeout(0)

	r := stream.R().SetContext(ctx)
	if after > 0 {
		r.SetQueryParam("after", fmt.Sprintf("%d", after))
	}

	res, err := r.Get("/v1/events")
	if err != nil {
		return nil, fmt.Errorf("%w: events: %w", ErrDaemonUnreachable, err)
	}
	if res.IsErrorState() {
		res.Body.Close()
		return nil, fmt.Errorf("cpclient: events: unexpected status %s", res.Status)
	}

	ch := make(chan *ui.Intent, eventBufferSize)

	go func() {
		defer close(ch)
		defer res.Body.Close()

		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			line := scanner.Text()
			data, ok := strings.CutPrefix(line, "data:")
			if !ok {
				continue
			}

			var intent ui.Intent
			if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &intent); err != nil {
				slog.Debug("event stream skipping malformed intent", "error", err)
				continue
			}

			select {
			case ch <- &intent:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
