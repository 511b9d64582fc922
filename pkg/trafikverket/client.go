package trafikverket

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/trafikinfo-se/trafikinfo/pkg/util"
)

const requestLimit = 5000

var ErrMissingAPIKey = errors.New("missing trafikverket api key")

type Client struct {
	Endpoint  string
	APIKey    string
	UserAgent string

	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		Endpoint:  DataCacheEndpoint,
		APIKey:    apiKey,
		UserAgent: "trafikinfo-se/1.0",

		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// FetchSituations posts the Situation query and parses the response.
// Transient failures (connection errors, 5xx, 429) retry with exponential
// backoff; authentication and API errors fail immediately.
func (client *Client) FetchSituations(ctx context.Context) (*FetchResult, error) {
	if client.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var result *FetchResult

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = 90 * time.Second

	operation := func() error {
		fetched, err := client.fetchOnce(ctx)
		if err != nil {
			var authErr *AuthenticationError
			var apiErr *APIError
			if errors.As(err, &authErr) {
				return backoff.Permanent(err)
			}
			if errors.As(err, &apiErr) && apiErr.StatusCode != 0 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429 {
				return backoff.Permanent(err)
			}

			log.Debug().Err(err).Msg("Retrying trafikverket fetch")
			return err
		}

		result = fetched
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(retryBackoff, ctx)); err != nil {
		return nil, err
	}

	return result, nil
}

func (client *Client) fetchOnce(ctx context.Context) (*FetchResult, error) {
	requestXML := BuildSituationRequest(client.APIKey, requestLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.Endpoint, bytes.NewBufferString(requestXML))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("User-Agent", client.UserAgent)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthenticationError{Message: resp.Status}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    util.TrimString(string(body), 300),
		}
	}

	return ParseResponse(resp.Body)
}
