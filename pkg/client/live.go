package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/javajoker/barter-backend/internal/livequery"
)

// snapshotFrame mirrors livequery.ServerFrame with the data left raw.
type snapshotFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Watch keeps q live until ctx ends, calling onSnapshot with the raw JSON
// array of each full result set. Snapshots replace each other; a slow
// handler only misses intermediate ones. It returns nil when ctx is
// cancelled and an error if the server refuses the query or drops the
// connection.
func (c *Client) Watch(ctx context.Context, q livequery.Query, onSnapshot func(json.RawMessage) error) error {
	wsURL, err := c.wsURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dial live queries: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	const subID = "watch"
	err = wsjson.Write(ctx, conn, livequery.ClientFrame{
		Op:         livequery.OpSubscribe,
		ID:         subID,
		Collection: q.Collection,
		Field:      q.Field,
		Value:      q.Value,
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for {
		var frame snapshotFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("live query %s: %w", q, err)
		}

		switch frame.Type {
		case livequery.FrameSnapshot:
			if len(frame.Data) == 0 {
				frame.Data = json.RawMessage("[]")
			}
			if err := onSnapshot(frame.Data); err != nil {
				return err
			}
		case livequery.FrameError:
			return fmt.Errorf("live query %s refused: %s", q, frame.Message)
		}
	}
}

func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/v1/ws")
	if err != nil {
		return "", err
	}
	switch {
	case strings.EqualFold(u.Scheme, "https"):
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", c.Token())
	u.RawQuery = q.Encode()
	return u.String(), nil
}
