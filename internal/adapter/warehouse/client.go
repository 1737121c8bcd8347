// Package warehouse executes provisioning statements against Snowflake.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/couchcryptid/geocode-proxy-service/internal/adapter/secrets"
	"github.com/couchcryptid/geocode-proxy-service/internal/provision"
	"github.com/jmoiron/sqlx"
	"github.com/snowflakedb/gosnowflake"
)

// sqlCompilationObjectMissing is Snowflake's "object does not exist or not
// authorized" compilation error.
const sqlCompilationObjectMissing = 2003

// Client implements provision.Warehouse over a Snowflake connection pool.
// The pool opens lazily on first statement; provisioning events are rare, so
// idle connections are not kept around.
type Client struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open creates a Snowflake client from warehouse credentials.
func Open(creds secrets.Credentials, logger *slog.Logger) (*Client, error) {
	db, err := sqlx.Open("snowflake", buildDSN(creds))
	if err != nil {
		return nil, fmt.Errorf("open snowflake: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(0)
	return &Client{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Exec runs one statement. Not-found errors are wrapped with
// provision.ErrObjectNotFound so teardown paths can swallow them.
func (c *Client) Exec(ctx context.Context, stmt string) error {
	c.logger.Debug("executing statement", "statement", stmt)
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return classify(err)
	}
	return nil
}

// describeRow is one property row of a DESCRIBE API INTEGRATION result.
type describeRow struct {
	Property        string `db:"property"`
	PropertyType    string `db:"property_type"`
	PropertyValue   string `db:"property_value"`
	PropertyDefault string `db:"property_default"`
}

// DescribeIntegration reads back the warehouse-assigned identity attributes
// of an integration.
func (c *Client) DescribeIntegration(ctx context.Context, name string) (provision.IntegrationAttributes, error) {
	var attrs provision.IntegrationAttributes

	rows, err := c.db.QueryxContext(ctx, fmt.Sprintf("DESCRIBE API INTEGRATION %s", name))
	if err != nil {
		return attrs, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var row describeRow
		if err := rows.StructScan(&row); err != nil {
			return attrs, fmt.Errorf("scan describe row: %w", err)
		}
		switch row.Property {
		case "API_AWS_IAM_USER_ARN":
			attrs.APIAwsIamUserARN = row.PropertyValue
		case "API_AWS_EXTERNAL_ID":
			attrs.APIAwsExternalID = row.PropertyValue
		}
	}
	if err := rows.Err(); err != nil {
		return attrs, fmt.Errorf("read describe rows: %w", err)
	}

	if attrs.APIAwsIamUserARN == "" || attrs.APIAwsExternalID == "" {
		return attrs, fmt.Errorf("describe %s returned no IAM user ARN or external ID", name)
	}
	return attrs, nil
}

// buildDSN assembles a gosnowflake DSN (user:password@account).
func buildDSN(creds secrets.Credentials) string {
	return fmt.Sprintf("%s:%s@%s",
		url.QueryEscape(creds.Username),
		url.QueryEscape(creds.Password),
		creds.Account,
	)
}

// classify wraps Snowflake not-found errors with provision.ErrObjectNotFound.
func classify(err error) error {
	var sfErr *gosnowflake.SnowflakeError
	if errors.As(err, &sfErr) && sfErr.Number == sqlCompilationObjectMissing {
		return fmt.Errorf("%w: %v", provision.ErrObjectNotFound, err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "does not exist") {
		return fmt.Errorf("%w: %v", provision.ErrObjectNotFound, err)
	}
	return err
}
