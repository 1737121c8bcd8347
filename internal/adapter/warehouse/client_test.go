package warehouse

import (
	"errors"
	"testing"

	"github.com/couchcryptid/geocode-proxy-service/internal/adapter/secrets"
	"github.com/couchcryptid/geocode-proxy-service/internal/provision"
	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(secrets.Credentials{
		Account:  "xy12345.eu-central-1",
		Username: "provisioner",
		Password: "p@ss:word",
	})
	assert.Equal(t, "provisioner:p%40ss%3Aword@xy12345.eu-central-1", dsn)
}

func TestClassify_SnowflakeObjectMissing(t *testing.T) {
	err := classify(&gosnowflake.SnowflakeError{
		Number:  2003,
		Message: "SQL compilation error: Integration 'X' does not exist or not authorized.",
	})
	require.ErrorIs(t, err, provision.ErrObjectNotFound)
}

func TestClassify_MessageFallback(t *testing.T) {
	err := classify(errors.New("SQL compilation error: Function GEOCODE does not exist"))
	require.ErrorIs(t, err, provision.ErrObjectNotFound)
}

func TestClassify_OtherErrorsPassThrough(t *testing.T) {
	cause := errors.New("permission denied")
	err := classify(cause)
	assert.Equal(t, cause, err)
	assert.NotErrorIs(t, err, provision.ErrObjectNotFound)
}
