package redis

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dei-tracker/web/internal/companies"
	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/pkg/retry"
)

var _ companies.SessionStore = (*Client)(nil)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set; skipping redis integration test")
	}
	port := 6379
	if p := os.Getenv("REDIS_PORT"); p != "" {
		n, err := strconv.Atoi(p)
		require.NoError(t, err)
		port = n
	}

	c, err := NewClient(context.Background(), host, port, os.Getenv("REDIS_PASSWORD"), 0, retry.Config{MaxAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestListingKey(t *testing.T) {
	assert.Equal(t, "dei-web:listing:abc", listingKey("abc"))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, isAuthError(errors.New("WRONGPASS invalid username-password pair")))
	assert.True(t, isAuthError(errors.New("NOAUTH Authentication required.")))
	assert.False(t, isAuthError(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")))
}

func TestClient_RowsRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	industry := "Technology"
	rows := []models.Company{{ID: "1", Name: "Acme", Industry: &industry}}
	require.NoError(t, c.SetRows(ctx, "test-roundtrip", rows, time.Minute))

	got, ok, err := c.GetRows(ctx, "test-roundtrip")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rows, got)

	_, err = c.FlushListings(ctx)
	require.NoError(t, err)

	_, ok, err = c.GetRows(ctx, "test-roundtrip")
	require.NoError(t, err)
	assert.False(t, ok)
}
