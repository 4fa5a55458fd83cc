package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sys/unix"

	"captioner/internal/config"
	"captioner/internal/transcript"
)

const checkTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRecognizer opens and closes a websocket to a recognizer server.
func CheckRecognizer(ctx context.Context, lang, url string) Result {
	name := fmt.Sprintf("Recognizer (%s)", lang)
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: checkTimeout, Proxy: http.ProxyFromEnvironment}
	conn, resp, err := dialer.DialContext(checkCtx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable (%s)", url, summarizeError(err))}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: url}
}

// CheckRedis pings the transcript mirror.
func CheckRedis(ctx context.Context, cfg config.Redis) Result {
	const name = "Redis"
	client := transcript.NewRedisClient(cfg)
	defer client.Close()

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := client.Ping(checkCtx).Err(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable (%s)", cfg.Addr, summarizeError(err))}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Addr}
}

// CheckOpenAIKey reports whether an API key is configured. It does not call the API.
func CheckOpenAIKey(cfg config.Transcription) Result {
	const name = "OpenAI transcription"
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return Result{Name: name, Detail: "API key missing (set openai_api_key or OPENAI_API_KEY)"}
	}
	detail := "API key configured"
	if cfg.OpenAIBaseURL != "" {
		detail += " for " + cfg.OpenAIBaseURL
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
