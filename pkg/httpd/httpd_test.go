package httpd

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServeUntilCanceled(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "steam")
	})
	srv := New("localhost:0", h)
	srv.SetLogger(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	assert.NotEqual(t, "localhost:0", srv.Addr())

	res, err := http.Get("http://" + srv.Addr())
	require.NoError(t, err)
	b, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "steam", string(b))

	cancel()
	assert.NoError(t, srv.Wait())
}

func TestStartBadAddr(t *testing.T) {
	srv := New("localhost:-1", http.NotFoundHandler())
	assert.Error(t, srv.Start(context.Background()))
}
