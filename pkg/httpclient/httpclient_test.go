package httpclient_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libradesk/libradesk/pkg/httpclient"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestTransport_BearerInjection(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := httpclient.New(staticToken("tok-123"))
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestTransport_NoTokenNoHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := httpclient.New(staticToken(""))
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Empty(t, gotAuth)
}

func TestTransport_UnauthorizedHook(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var calls atomic.Int32
	client := httpclient.New(staticToken("expired"),
		httpclient.WithUnauthorized(func() { calls.Add(1) }))

	// three concurrent requests all hitting 401 must each report it;
	// collapsing to one logout belongs to the session manager
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(srv.URL)
			require.NoError(t, err)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	require.Equal(t, int32(3), calls.Load())
}
