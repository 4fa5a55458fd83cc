package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"captioner/internal/services"
)

type fakeRedis struct {
	sets       map[string]any
	published  []any
	channel    string
	publishErr error
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.sets == nil {
		f.sets = map[string]any{}
	}
	f.sets[key] = value
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	if f.publishErr != nil {
		return redis.NewIntResult(0, f.publishErr)
	}
	f.channel = channel
	f.published = append(f.published, message)
	return redis.NewIntResult(1, nil)
}

func TestRedisMirrorSetsAndPublishes(t *testing.T) {
	fake := &fakeRedis{}
	mirror := NewRedisMirror(fake, "captioner:transcript", "captioner:updates", nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mirror.now = func() time.Time { return fixed }

	ctx := services.WithSessionID(context.Background(), "abc")
	if err := mirror.Save(ctx, " Hello. "); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if fake.sets["captioner:transcript"] != "Hello." {
		t.Fatalf("unexpected stored value %v", fake.sets)
	}
	if fake.channel != "captioner:updates" || len(fake.published) != 1 {
		t.Fatalf("unexpected publish %q %v", fake.channel, fake.published)
	}
	var update Update
	if err := json.Unmarshal(fake.published[0].([]byte), &update); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if update.SessionID != "abc" || update.Text != "Hello." || !update.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected update %+v", update)
	}
}

func TestRedisMirrorSkipsEmptyChannel(t *testing.T) {
	fake := &fakeRedis{}
	if err := NewRedisMirror(fake, "k", "", nil).Save(context.Background(), "x"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if len(fake.published) != 0 {
		t.Fatalf("expected no publish, got %v", fake.published)
	}
}

func TestRedisMirrorWrapsErrors(t *testing.T) {
	fake := &fakeRedis{publishErr: errors.New("connection refused")}
	err := NewRedisMirror(fake, "", "ch", nil).Save(context.Background(), "x")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
