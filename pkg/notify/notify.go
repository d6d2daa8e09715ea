// Package notify sends desktop notifications through the terminal, when the
// terminal is there to receive them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

type Permission string

const (
	Granted Permission = "granted"
	Denied  Permission = "denied"
)

var ErrUnknownChannel = errors.New("unknown notification channel")

// Channel groups notifications of one kind
type Channel struct {
	ID          string
	Name        string
	Description string
}

var DefaultChannel = Channel{ID: "stickies", Name: "Stickies", Description: "Save and delete failures"}

type Notification struct {
	ChannelID string
	Title     string
	Body      string
}

type Notifier interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	RegisterChannel(c Channel) error
	Send(n Notification) error
}

// Detect picks a Notifier once at startup: a terminal notifier when enabled
// and out is a terminal, otherwise one that quietly does nothing.
func Detect(enabled bool, out *os.File, log zerolog.Logger) Notifier {
	if !enabled {
		log.Debug().Msg("notifications disabled")
		return Noop{}
	}
	if out == nil || !(isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())) {
		log.Debug().Msg("output is not a terminal, notifications unavailable")
		return Noop{}
	}
	return NewTerminal(out)
}

// Prepare asks for permission and registers the default channel. A notifier
// that is refused, or cannot take the channel, is replaced by Noop.
func Prepare(ctx context.Context, n Notifier, log zerolog.Logger) Notifier {
	perm := n.Permission()
	if perm != Granted {
		var err error
		if perm, err = n.RequestPermission(ctx); err != nil {
			log.Warn().Err(err).Msg("unable to request notification permission")
			return Noop{}
		}
	}
	if perm != Granted {
		log.Debug().Str("permission", string(perm)).Msg("notifications not permitted")
		return Noop{}
	}
	if err := n.RegisterChannel(DefaultChannel); err != nil {
		log.Warn().Err(err).Msg("unable to register notification channel")
		return Noop{}
	}
	return n
}

// Terminal emits OSC 777 notifications, which most terminal emulators
// forward to the desktop.
type Terminal struct {
	mu       sync.Mutex
	out      *termenv.Output
	channels map[string]Channel
}

func NewTerminal(w io.Writer) *Terminal {
	t := &Terminal{
		out:      termenv.NewOutput(w),
		channels: map[string]Channel{},
	}
	t.channels[DefaultChannel.ID] = DefaultChannel
	return t
}

func (t *Terminal) Permission() Permission { return Granted }

func (t *Terminal) RequestPermission(context.Context) (Permission, error) { return Granted, nil }

func (t *Terminal) RegisterChannel(c Channel) error {
	if c.ID == "" {
		return fmt.Errorf("channel %q has no id", c.Name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channels[c.ID] = c
	return nil
}

func (t *Terminal) Send(n Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n.ChannelID == "" {
		n.ChannelID = DefaultChannel.ID
	}
	if _, ok := t.channels[n.ChannelID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, n.ChannelID)
	}
	t.out.Notify(n.Title, n.Body)
	return nil
}

// Noop is the Notifier used when notifications are absent.
type Noop struct{}

func (Noop) Permission() Permission                                { return Denied }
func (Noop) RequestPermission(context.Context) (Permission, error) { return Denied, nil }
func (Noop) RegisterChannel(Channel) error                         { return nil }
func (Noop) Send(Notification) error                               { return nil }

var (
	_ Notifier = (*Terminal)(nil)
	_ Notifier = Noop{}
)
