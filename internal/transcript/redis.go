package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"captioner/internal/config"
	"captioner/internal/logging"
	"captioner/internal/services"
)

// redisWriter is the subset of *redis.Client used by the mirror.
type redisWriter interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Update is the message published on every save.
type Update struct {
	SessionID string    `json:"session_id,omitempty"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisMirror stores the transcript under a key and publishes each update.
type RedisMirror struct {
	client  redisWriter
	key     string
	channel string
	logger  *slog.Logger
	now     func() time.Time
}

// NewRedisMirror wraps an existing client. An empty key or channel disables
// that half of the mirror.
func NewRedisMirror(client redisWriter, key, channel string, logger *slog.Logger) *RedisMirror {
	return &RedisMirror{
		client:  client,
		key:     strings.TrimSpace(key),
		channel: strings.TrimSpace(channel),
		logger:  logging.NewComponentLogger(logger, "transcript-redis"),
		now:     time.Now,
	}
}

// NewRedisClient builds a go-redis client from config.
func NewRedisClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Save mirrors the trimmed text.
func (m *RedisMirror) Save(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if m.key != "" {
		if err := m.client.Set(ctx, m.key, text, 0).Err(); err != nil {
			return services.Wrap(services.ErrTransient, "transcript", "redis set", m.key, err)
		}
	}
	if m.channel == "" {
		return nil
	}
	update := Update{Text: text, UpdatedAt: m.now().UTC()}
	if id, ok := services.SessionIDFromContext(ctx); ok {
		update.SessionID = id
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode transcript update: %w", err)
	}
	receivers, err := m.client.Publish(ctx, m.channel, payload).Result()
	if err != nil {
		return services.Wrap(services.ErrTransient, "transcript", "redis publish", m.channel, err)
	}
	m.logger.Debug("transcript published",
		logging.String("channel", m.channel),
		logging.Int64("receivers", receivers),
	)
	return nil
}
