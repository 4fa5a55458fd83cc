package vosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"captioner/internal/live"
	"captioner/internal/services"
)

const defaultHandshakeTimeout = 10 * time.Second

// Model points at one vosk-server endpoint, which serves a single language model.
type Model struct {
	URL    string
	Dialer *websocket.Dialer
}

// NewModel returns a Model for the websocket endpoint url.
func NewModel(url string) *Model {
	return &Model{
		URL: strings.TrimSpace(url),
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
	}
}

type configMessage struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
	} `json:"config"`
}

type resultMessage struct {
	Partial *string `json:"partial"`
	Text    *string `json:"text"`
}

// NewRecognizer dials the server and configures the sample rate.
func (m *Model) NewRecognizer(ctx context.Context, sampleRate int) (live.Recognizer, error) {
	if m.URL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "live", "dial recognizer", "vosk server url is empty", nil)
	}
	if sampleRate <= 0 {
		return nil, services.Wrap(services.ErrValidation, "live", "dial recognizer", fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}
	dialer := m.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, m.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "live", "dial recognizer", m.URL, err)
	}

	var cfg configMessage
	cfg.Config.SampleRate = sampleRate
	if err := conn.WriteJSON(cfg); err != nil {
		_ = conn.Close()
		return nil, services.Wrap(services.ErrExternalTool, "live", "configure recognizer", m.URL, err)
	}
	return &Recognizer{conn: conn}, nil
}

// Recognizer is one streaming session on a vosk-server connection.
type Recognizer struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// Feed sends chunk and waits for the server's result.
func (r *Recognizer) Feed(ctx context.Context, chunk []byte) (live.Result, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return live.Result{}, false, errors.New("vosk: recognizer closed")
	}

	// Unblock the read when ctx ends.
	stop := context.AfterFunc(ctx, func() {
		_ = r.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := r.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return live.Result{}, false, fmt.Errorf("vosk: send audio: %w", err)
	}
	_, payload, err := r.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return live.Result{}, false, ctx.Err()
		}
		return live.Result{}, false, fmt.Errorf("vosk: read result: %w", err)
	}
	return decodeResult(payload)
}

func decodeResult(payload []byte) (live.Result, bool, error) {
	var msg resultMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return live.Result{}, false, fmt.Errorf("vosk: decode result: %w", err)
	}
	switch {
	case msg.Text != nil:
		return live.Result{Text: *msg.Text, Final: true}, true, nil
	case msg.Partial != nil:
		return live.Result{Text: *msg.Partial}, true, nil
	default:
		return live.Result{}, false, nil
	}
}

// Close signals end of stream and closes the connection.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	_ = r.conn.SetWriteDeadline(time.Now().Add(time.Second))
	eofErr := r.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`))
	closeErr := r.conn.Close()
	if eofErr != nil && !errors.Is(eofErr, websocket.ErrCloseSent) {
		return fmt.Errorf("vosk: send eof: %w", eofErr)
	}
	return closeErr
}
