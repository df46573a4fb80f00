package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/prefsync/prefsync/internal/client/sync"
)

// fakeEngine implements sync.Engine on top of a real StatusTracker.
type fakeEngine struct {
	*sync.StatusTracker

	syncErr error
}

func newFakeEngine(status sync.Status) *fakeEngine {
	tracker := sync.NewStatusTracker()
	tracker.Set(status)
	return &fakeEngine{StatusTracker: tracker}
}

func (f *fakeEngine) Sync(ctx context.Context) error             { return f.syncErr }
func (f *fakeEngine) StopSync(ctx context.Context) error         { return nil }
func (f *fakeEngine) ContinueSync(ctx context.Context) error     { return nil }
func (f *fakeEngine) ResolveConflicts(ctx context.Context) error { return nil }

func testContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	c.Request = httptest.NewRequest(method, target, reader)
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func requireJSON(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
}
