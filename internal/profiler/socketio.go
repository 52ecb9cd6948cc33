package profiler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	// MarkerEvent carries {"name", "time"} with time in Unix nanoseconds.
	MarkerEvent = "marker"
	// ZoneEvent carries {"name", "start", "duration"} in nanoseconds.
	ZoneEvent = "zone"
)

// SocketIO streams markers and zones to a remote viewer over socket.io.
// Emits are fire-and-forget; a slow or absent viewer never blocks a pass.
type SocketIO struct {
	emit  func(event string, payload map[string]any)
	close func()
}

// DialSocketIO connects to a socket.io server at rawURL and waits for the
// connection to be acknowledged or for timeout to elapse.
func DialSocketIO(ctx context.Context, rawURL, namespace string, timeout time.Duration) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("profiler", "socketio", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiler URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("profiler URL %q must be absolute", rawURL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to profiler viewer.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Connecting to profiler viewer...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	return &SocketIO{
		emit: func(event string, payload map[string]any) {
			if err := io.Emit(event, payload); err != nil {
				logger.Debug("Dropped profiler event.", "event", event, "error", err)
			}
		},
		close: func() { io.Disconnect() },
	}, nil
}

// Mark emits a MarkerEvent.
func (s *SocketIO) Mark(name string) {
	s.emit(MarkerEvent, map[string]any{"name": name, "time": time.Now().UnixNano()})
}

// Begin opens a zone that emits a ZoneEvent when it ends.
func (s *SocketIO) Begin(name string) Zone {
	return &socketZone{s: s, name: name, start: time.Now()}
}

// Close disconnects from the viewer.
func (s *SocketIO) Close() {
	if s.close != nil {
		s.close()
	}
}

type socketZone struct {
	s     *SocketIO
	name  string
	start time.Time
}

func (z *socketZone) End() {
	z.s.emit(ZoneEvent, map[string]any{
		"name":     z.name,
		"start":    z.start.UnixNano(),
		"duration": time.Since(z.start).Nanoseconds(),
	})
}
