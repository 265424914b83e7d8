package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOpts() *ClientOptions {
	return &ClientOptions{
		User:      "foo",
		Password:  "bar",
		VerifyTLS: true,
		Timeout:   2 * time.Second,
	}
}

func transportCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var te *TransportError
	require.ErrorAs(t, err, &te)
	return te.Code
}

func TestClient_NodeInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cluster/node", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "foo", user)
		assert.Equal(t, "bar", pass)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"node":"node01","cluster":"cluster01"}}`))
	}))
	defer srv.Close()

	c := NewClient(testOpts())
	identity, err := c.NodeInfo(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "node01", identity.Node)
	assert.Equal(t, "cluster01", identity.Cluster)
}

func TestClient_Files(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manager/files", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"rules.xml":{"checksum":"abc","size":10,` +
			`"modification_time":"2024-01-01 00:00:00","mode":"0660","user":"ossec",` +
			`"group":"ossec","write_mode":"atomic",` +
			`"conditions":{"different_checksum":true,"remote_time_higher":false,"larger_file_size":false}}}}`))
	}))
	defer srv.Close()

	c := NewClient(testOpts())
	inv, err := c.Files(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, inv, 1)

	record := inv["rules.xml"]
	require.NotNil(t, record)
	assert.Equal(t, "rules.xml", record.Name, "name is filled from the map key")
	assert.Equal(t, "abc", record.Checksum)
	assert.Equal(t, int64(10), record.Size)
	require.NotNil(t, record.Conditions)
	assert.True(t, record.Conditions.DifferentChecksum)
	assert.False(t, record.Conditions.RemoteTimeHigher)
}

func TestClient_Files_NullEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"rules.xml":null}}`))
	}))
	defer srv.Close()

	c := NewClient(testOpts())
	inv, err := c.Files(context.Background(), srv.URL)
	assert.Nil(t, inv)
	assert.Equal(t, CodeDecodeFailed, transportCode(t, err))
	assert.Contains(t, err.Error(), "rules.xml")
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rules.xml", r.URL.Query().Get("download"))
		w.Write([]byte("<rules/>"))
	}))
	defer srv.Close()

	c := NewClient(testOpts())
	content, err := c.Download(context.Background(), srv.URL, "rules.xml")
	require.NoError(t, err)
	assert.Equal(t, "<rules/>", string(content))
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(testOpts())
		_, err := c.NodeInfo(context.Background(), srv.URL)
		assert.Equal(t, CodeUnauthorized, transportCode(t, err))

		_, err = c.Download(context.Background(), srv.URL, "x")
		assert.Equal(t, CodeUnauthorized, transportCode(t, err))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer srv.Close()

		opts := testOpts()
		opts.Timeout = 50 * time.Millisecond
		c := NewClient(opts)
		_, err := c.NodeInfo(context.Background(), srv.URL)
		assert.Equal(t, CodeTimeout, transportCode(t, err))
	})

	t.Run("too many redirects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		}))
		defer srv.Close()

		c := NewClient(testOpts())
		_, err := c.NodeInfo(context.Background(), srv.URL)
		assert.Equal(t, CodeTooManyRedirects, transportCode(t, err))
		assert.ErrorIs(t, err, ErrTooManyRedirects)
	})

	t.Run("request failed", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		c := NewClient(testOpts())
		_, err := c.NodeInfo(context.Background(), addr)
		assert.Equal(t, CodeRequestFailed, transportCode(t, err))
	})

	t.Run("decode failed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		c := NewClient(testOpts())
		_, err := c.Files(context.Background(), srv.URL)
		assert.Equal(t, CodeDecodeFailed, transportCode(t, err))
	})

	t.Run("raw download skips decoding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		c := NewClient(testOpts())
		content, err := c.Download(context.Background(), srv.URL, "x")
		require.NoError(t, err)
		assert.Equal(t, "<html>not json</html>", string(content))
	})
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "timeout", CodeTimeout.String())
	assert.Equal(t, "unauthorized", CodeUnauthorized.String())
	assert.Equal(t, "code_99", ErrorCode(99).String())
}

func TestAsTransportError(t *testing.T) {
	te := newTransportError(CodeTimeout, "http://x", errors.New("boom"))
	assert.Same(t, te, AsTransportError(te))

	wrapped := AsTransportError(errors.New("plain"))
	assert.Equal(t, CodeUnknown, wrapped.Code)
	assert.Equal(t, "plain", wrapped.Message)
}
