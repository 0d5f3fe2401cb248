package websocket

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/gorilla/websocket"

	"webshop/pkg/logger"
)

// The backend exposes STOMP under /ws through SockJS; /ws/websocket is the
// raw WebSocket transport of that endpoint.
const stompPath = "/ws/websocket"

// PushClient subscribes to backend STOMP topics. Each Listen call owns one
// connection and reconnects with exponential backoff until its context ends.
type PushClient struct {
	endpoint     string
	host         string
	heartBeat    time.Duration
	reconnectMin time.Duration
	reconnectMax time.Duration
	dialer       *websocket.Dialer
}

type PushOption func(*PushClient)

func WithHeartBeat(d time.Duration) PushOption {
	return func(c *PushClient) { c.heartBeat = d }
}

// WithReconnectBackoff sets the first retry delay and its cap.
func WithReconnectBackoff(min, max time.Duration) PushOption {
	return func(c *PushClient) {
		if min > 0 && max >= min {
			c.reconnectMin, c.reconnectMax = min, max
		}
	}
}

func NewPushClient(baseURL string, opts ...PushOption) (*PushClient, error) {
	endpoint, host, err := stompEndpoint(baseURL)
	if err != nil {
		return nil, err
	}
	c := &PushClient{
		endpoint:     endpoint,
		host:         host,
		heartBeat:    4 * time.Second,
		reconnectMin: 5 * time.Second,
		reconnectMax: 60 * time.Second,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *PushClient) Endpoint() string {
	return c.endpoint
}

// Listen subscribes to destination and calls onMessage for every frame
// received. It blocks until ctx is done. Frame bodies are not inspected.
func (c *PushClient) Listen(ctx context.Context, destination string, onMessage func()) {
	backoff := c.reconnectMin
	for {
		subscribed, err := c.session(ctx, destination, onMessage)
		if ctx.Err() != nil {
			return
		}
		if subscribed {
			backoff = c.reconnectMin
		}
		logger.Warn("push subscription to %s lost: %v, retrying in %s", destination, err, backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		backoff *= 2
		if backoff > c.reconnectMax {
			backoff = c.reconnectMax
		}
	}
}

// session runs one connection. subscribed reports whether the subscription
// was established before the connection ended.
func (c *PushClient) session(ctx context.Context, destination string, onMessage func()) (subscribed bool, err error) {
	ws, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	stream := &wsStream{conn: ws}
	stop := context.AfterFunc(ctx, func() { stream.Close() })
	defer stop()

	conn, err := stomp.Connect(stream,
		stomp.ConnOpt.Host(c.host),
		stomp.ConnOpt.AcceptVersion(stomp.V11, stomp.V12),
		stomp.ConnOpt.HeartBeat(c.heartBeat, c.heartBeat),
	)
	if err != nil {
		stream.Close()
		return false, fmt.Errorf("stomp connect: %w", err)
	}
	defer conn.MustDisconnect()

	sub, err := conn.Subscribe(destination, stomp.AckAuto)
	if err != nil {
		return false, fmt.Errorf("subscribe %s: %w", destination, err)
	}
	logger.Info("subscribed to %s", destination)

	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-sub.C:
			if !ok {
				return true, fmt.Errorf("subscription closed")
			}
			if msg.Err != nil {
				return true, msg.Err
			}
			onMessage()
		}
	}
}

func stompEndpoint(baseURL string) (endpoint, host string, err error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + stompPath
	return u.String(), u.Hostname(), nil
}

// wsStream presents a WebSocket as the byte stream STOMP expects. Incoming
// messages are concatenated; every write goes out as one text message.
type wsStream struct {
	conn    *websocket.Conn
	reader  io.Reader
	writeMu sync.Mutex
	once    sync.Once
}

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.reader == nil {
			_, r, err := s.conn.NextReader()
			if err != nil {
				return 0, err
			}
			s.reader = r
		}
		n, err := s.reader.Read(p)
		if err == io.EOF {
			s.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() { err = s.conn.Close() })
	return err
}
