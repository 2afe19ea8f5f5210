package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpstreamClient_FetchLeads_Shapes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"array": `[{"id":1,"full_name":"A"},{"id":2}]`,
		"data":  `{"data":[{"id":1},{"id":2}]}`,
		"list":  `{"list":[{"id":1},{"id":2}],"pageInfo":{}}`,
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			recs, err := NewUpstreamClient(srv.URL, "").FetchLeads(context.Background(), 4)
			require.NoError(t, err)
			require.Len(t, recs, 2)
		})
	}
}

func TestUpstreamClient_SendsAccountAndToken(t *testing.T) {
	t.Parallel()

	var gotPath, gotAccount, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccount = r.URL.Query().Get("accountId")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	recs, err := NewUpstreamClient(srv.URL+"/", "tok").FetchCampaigns(context.Background(), 12)
	require.NoError(t, err)
	require.Empty(t, recs)
	require.Equal(t, "/api/campaigns", gotPath)
	require.Equal(t, "12", gotAccount)
	require.Equal(t, "Bearer tok", gotAuth)
}

func TestUpstreamClient_Non200_ReturnsErrorWithBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	_, err := NewUpstreamClient(srv.URL, "").FetchLeads(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status code: 502")
	require.Contains(t, err.Error(), `body="down"`)
}

func TestUpstreamClient_TruncatesErrorBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>" + strings.Repeat("x", 4096) + "</html>"))
	}))
	defer srv.Close()

	_, err := NewUpstreamClient(srv.URL, "").FetchLeads(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), `..."`)
	require.NotContains(t, err.Error(), "</html>")
	require.Less(t, len(err.Error()), 400)
}

func TestUpstreamClient_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("["))
		_, _ = w.Write(bytes.Repeat([]byte(" "), maxResponseBody))
		_, _ = w.Write([]byte("]"))
	}))
	defer srv.Close()

	_, err := NewUpstreamClient(srv.URL, "").FetchLeads(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "response exceeds")
}

func TestUpstreamClient_UnsupportedShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"just a string"`))
	}))
	defer srv.Close()

	_, err := NewUpstreamClient(srv.URL, "").FetchLeads(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode json")
}

func TestUpstreamClient_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewUpstreamClient(srv.URL, "").FetchLeads(ctx, 1)
	require.Error(t, err)
}
