package gesture

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// socketFeed reads detection frames from a websocket, one JSON frame per
// message.
type socketFeed struct {
	conn *websocket.Conn

	once sync.Once
	err  error
}

// WebsocketDialer connects to a landmark server at url (ws:// or wss://).
func WebsocketDialer(url string) Dialer {
	return func(ctx context.Context) (Feed, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", url, err)
		}
		return &socketFeed{conn: conn}, nil
	}
}

func (f *socketFeed) Next() (Frame, error) {
	for {
		mt, data, err := f.conn.ReadMessage()
		if err != nil {
			return Frame{}, fmt.Errorf("reading gesture socket: %w", err)
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		return ParseFrame(data)
	}
}

func (f *socketFeed) Close() error {
	f.once.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		f.conn.WriteMessage(websocket.CloseMessage, msg)
		f.err = f.conn.Close()
	})
	return f.err
}
