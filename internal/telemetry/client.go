// Package telemetry sends anonymous, opt-in usage events to PostHog.
// Events carry run-level counts only, never ticket or documentation content.
package telemetry

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client records usage events. All implementations must be safe to call
// when telemetry is disabled.
type Client interface {
	Track(event string, properties map[string]any) error
	Close() error
}

// enqueuer is the slice of posthog.Client we use; the indirection lets
// tests capture enqueued messages.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// ClientConfig carries the settings needed to construct a PostHog client.
type ClientConfig struct {
	APIKey      string
	Endpoint    string
	AnonymousID string
	Version     string
}

// PostHogClient buffers events and flushes them in the background.
type PostHogClient struct {
	mu          sync.Mutex
	client      enqueuer
	anonymousID string
	version     string
	initialized bool
}

// NewPostHogClient creates a client. Returns an error when the API key is
// missing; callers should fall back to NoopClient.
func NewPostHogClient(cfg ClientConfig) (*PostHogClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("telemetry API key not configured")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint:  cfg.Endpoint,
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    quietPostHogLogger{},
	})
	if err != nil {
		return nil, fmt.Errorf("create posthog client: %w", err)
	}

	return &PostHogClient{
		client:      client,
		anonymousID: cfg.AnonymousID,
		version:     cfg.Version,
		initialized: true,
	}, nil
}

// Track enqueues one event. Standard properties (os, arch, version) are
// added to every event; person profiles are never created.
func (c *PostHogClient) Track(event string, properties map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}

	props := posthog.NewProperties().
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH).
		Set("app_version", c.version).
		Set("$process_person_profile", false)
	for k, v := range properties {
		props.Set(k, v)
	}

	return c.client.Enqueue(posthog.Capture{
		DistinctId: c.anonymousID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes buffered events.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}
	c.initialized = false
	return c.client.Close()
}

// quietPostHogLogger suppresses PostHog client logs in normal CLI output.
type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}

// NoopClient is used when telemetry is disabled.
type NoopClient struct{}

func (NoopClient) Track(string, map[string]any) error { return nil }
func (NoopClient) Close() error                       { return nil }
