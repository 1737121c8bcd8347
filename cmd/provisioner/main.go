// Command provisioner applies one provisioning lifecycle event against the
// warehouse: it creates, updates, or deletes the API integration and its
// external functions, and prints the resulting identity attributes as JSON.
//
// Usage:
//
//	go run ./cmd/provisioner -event create-event.json
//	cat event.json | go run ./cmd/provisioner -event -
//
// Warehouse credentials come from the secret store (SECRETS_BASE_URL), or
// from SNOWFLAKE_ACCOUNT / SNOWFLAKE_USERNAME / SNOWFLAKE_PASSWORD when no
// secret store is configured.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/geocode-proxy-service/internal/adapter/secrets"
	"github.com/couchcryptid/geocode-proxy-service/internal/adapter/warehouse"
	"github.com/couchcryptid/geocode-proxy-service/internal/config"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
	"github.com/couchcryptid/geocode-proxy-service/internal/provision"
	"github.com/joho/godotenv"
)

func main() {
	eventPath := flag.String("event", "", "path to the lifecycle event JSON, or - for stdin")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for applying the event")
	flag.Parse()

	if *eventPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*eventPath, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(eventPath string, timeout time.Duration) int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	logger := observability.NewLogger(cfg)

	event, err := readEvent(eventPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read event: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	creds, err := loadCredentials(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load credentials: %v\n", err)
		return 1
	}

	wh, err := warehouse.Open(creds, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open warehouse: %v\n", err)
		return 1
	}
	defer wh.Close() //nolint:errcheck

	reconciler := provision.NewReconciler(wh, cfg.GrabSupported, logger)
	resp, err := reconciler.Apply(ctx, event)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apply %s: %v\n", event.RequestType, err)
		return 1
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "encode response: %v\n", err)
		return 1
	}
	return 0
}

func readEvent(path string) (provision.Event, error) {
	var event provision.Event

	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return event, err
	}

	if err := json.Unmarshal(raw, &event); err != nil {
		return event, fmt.Errorf("parse event JSON: %w", err)
	}
	return event, nil
}

func loadCredentials(ctx context.Context, cfg *config.Config, logger *slog.Logger) (secrets.Credentials, error) {
	if cfg.SecretsBaseURL != "" {
		client := secrets.NewClient(cfg.SecretsBaseURL, cfg.SecretsName, 10*time.Second, logger)
		return client.FetchCredentials(ctx)
	}

	logger.Info("no secret store configured, using SNOWFLAKE_* environment")
	creds := secrets.Credentials{
		Account:  os.Getenv("SNOWFLAKE_ACCOUNT"),
		Username: os.Getenv("SNOWFLAKE_USERNAME"),
		Password: os.Getenv("SNOWFLAKE_PASSWORD"),
	}
	if creds.Account == "" || creds.Username == "" || creds.Password == "" {
		return creds, fmt.Errorf("SNOWFLAKE_ACCOUNT, SNOWFLAKE_USERNAME, and SNOWFLAKE_PASSWORD must be set")
	}
	return creds, nil
}
