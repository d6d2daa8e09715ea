// Package ws carries host commands over a websocket, so the notes UI can run
// against a backend in another process or on another machine.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/byxorna/stickies/pkg/host"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Path is where Server expects to be mounted
const Path = "/rpc"

var (
	ErrClosed = errors.New("connection closed")

	DefaultDialer = &gorilla.Dialer{
		Proxy:             gorilla.DefaultDialer.Proxy,
		HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
		EnableCompression: true,
		Subprotocols:      []string{"cbor"},
	}
)

type request struct {
	ID      string          `cbor:"id"`
	Command string          `cbor:"command"`
	Args    cbor.RawMessage `cbor:"args,omitempty"`
}

type response struct {
	ID     string          `cbor:"id"`
	Result cbor.RawMessage `cbor:"result,omitempty"`
	Error  string          `cbor:"error,omitempty"`
	// Unknown marks errors.Is(err, host.ErrUnknownCommand) on the server side
	Unknown bool `cbor:"unknown,omitempty"`
}

// Server answers host commands arriving over websocket connections.
type Server struct {
	dispatcher host.Dispatcher
	log        zerolog.Logger
	upgrader   gorilla.Upgrader
}

func NewServer(d host.Dispatcher, log zerolog.Logger) *Server {
	return &Server{
		dispatcher: d,
		log:        log,
		upgrader: gorilla.Upgrader{
			Subprotocols:      []string{"cbor"},
			EnableCompression: true,
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("client connected")

	var writeMu sync.Mutex

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
				log.Warn().Err(err).Msg("client connection lost")
			} else {
				log.Info().Msg("client disconnected")
			}
			return
		}

		var req request
		if err := host.Unmarshal(data, &req); err != nil {
			log.Warn().Err(err).Msg("dropping undecodable request")
			continue
		}

		// requests are not sequenced against each other
		wg.Add(1)
		go func(req request) {
			defer wg.Done()
			res := response{ID: req.ID}
			result, err := s.dispatcher.Dispatch(ctx, req.Command, req.Args)
			if err != nil {
				res.Error = err.Error()
				res.Unknown = errors.Is(err, host.ErrUnknownCommand)
			} else {
				res.Result = result
			}

			encoded, err := host.Marshal(res)
			if err != nil {
				log.Error().Err(err).Str("command", req.Command).Msg("unable to encode response")
				return
			}

			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteMessage(gorilla.BinaryMessage, encoded); err != nil {
				log.Warn().Err(err).Str("command", req.Command).Msg("unable to write response")
			}
		}(req)
	}
}

// Client is a host.Invoker that forwards every command to a Server.
type Client struct {
	conn *gorilla.Conn
	log  zerolog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan response
	closed   chan struct{}
	closeErr error
	once     sync.Once
}

// Dial connects to a Server. url may be given as host:port, in which case
// ws:// and the default path are assumed.
func Dial(ctx context.Context, url string, log zerolog.Logger) (*Client, error) {
	conn, res, err := DefaultDialer.DialContext(ctx, NormalizeURL(url), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if res != nil && res.Body != nil {
		res.Body.Close()
	}

	c := &Client{
		conn:    conn,
		log:     log,
		pending: map[string]chan response{},
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// NormalizeURL turns "host:port" into "ws://host:port/rpc".
func NormalizeURL(url string) string {
	if !strings.Contains(url, "://") {
		url = "ws://" + url
	}
	rest := url[strings.Index(url, "://")+3:]
	if !strings.Contains(rest, "/") {
		url += Path
	}
	return url
}

// Invoke sends one command and waits for its reply. There is no timeout
// beyond ctx.
func (c *Client) Invoke(ctx context.Context, command string, args any, reply any) error {
	encodedArgs, err := host.Marshal(args)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", command, err)
	}

	id := uuid.NewString()
	ch := make(chan response, 1)

	c.mu.Lock()
	if c.closeErr != nil {
		err := c.closeErr
		c.mu.Unlock()
		return err
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.forget(id)

	frame, err := host.Marshal(request{ID: id, Command: command, Args: encodedArgs})
	if err != nil {
		return fmt.Errorf("%s: encode frame: %w", command, err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(gorilla.BinaryMessage, frame)
	c.writeMu.Unlock()
	if err != nil {
		c.shutdown(err)
		return fmt.Errorf("%s: %w", command, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return fmt.Errorf("%s: %w", command, c.err())
	case res := <-ch:
		if res.Error != "" {
			if res.Unknown {
				return fmt.Errorf("%w: %s", host.ErrUnknownCommand, command)
			}
			return &host.CommandError{Command: command, Message: res.Error}
		}
		if reply == nil || len(res.Result) == 0 {
			return nil
		}
		if err := host.Unmarshal(res.Result, reply); err != nil {
			return fmt.Errorf("%s: decode reply: %w", command, err)
		}
		return nil
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || gorilla.IsCloseError(err, gorilla.CloseNormalClosure) {
				err = ErrClosed
			}
			c.shutdown(err)
			return
		}

		var res response
		if err := host.Unmarshal(data, &res); err != nil {
			c.log.Error().Err(err).Msg("undecodable response")
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[res.ID]
		c.mu.Unlock()
		if !ok {
			// the caller gave up on it
			c.log.Debug().Str("id", res.ID).Msg("response for unknown request")
			continue
		}
		ch <- res
	}
}

func (c *Client) shutdown(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.closeErr = err
		c.mu.Unlock()
		close(c.closed)
		_ = c.conn.Close()
	})
}

// Close sends a close frame and tears the connection down.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	c.shutdown(ErrClosed)
	return nil
}

var _ host.Invoker = (*Client)(nil)
