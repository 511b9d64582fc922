package trafikverket

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(endpoint string) *Client {
	client := NewClient("test-key")
	client.Endpoint = endpoint

	return client
}

func TestFetchSituations(t *testing.T) {
	var receivedBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)

		w.Write([]byte(sampleResponseXML))
	}))
	defer server.Close()

	result, err := testClient(server.URL).FetchSituations(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Situations, 2)
	assert.Contains(t, receivedBody, `authenticationkey="test-key"`)
	assert.Contains(t, receivedBody, `objecttype="Situation"`)
}

func TestFetchSituationsRetriesTransientFailures(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts += 1
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Write([]byte(sampleResponseXML))
	}))
	defer server.Close()

	result, err := testClient(server.URL).FetchSituations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	assert.Len(t, result.Situations, 2)
}

func TestFetchSituationsAuthFailureIsPermanent(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts += 1
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchSituations(context.Background())

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 1, attempts)
}

func TestFetchSituationsBadRequestIsPermanent(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts += 1
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad query"))
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchSituations(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestFetchSituationsMissingAPIKey(t *testing.T) {
	client := NewClient("")

	_, err := client.FetchSituations(context.Background())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
