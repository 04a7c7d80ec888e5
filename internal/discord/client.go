package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AwwCookies/Chatterbox-sub002/internal/config"
)

// Credential selects the Authorization header for a request. The executor is
// otherwise agnostic to whether it is acting for a linked user or for the
// application's bot identity.
type Credential struct {
	scheme string
	token  string
}

func Bearer(token string) Credential {
	return Credential{scheme: "Bearer", token: token}
}

func Bot(token string) Credential {
	return Credential{scheme: "Bot", token: token}
}

func (c Credential) header() string {
	return c.scheme + " " + c.token
}

type ClientOptions struct {
	BaseURL            string
	BotToken           string
	Buckets            *BucketStore
	HTTPClient         *http.Client
	RetryAfterFallback time.Duration
}

// Client issues HTTP calls to the Discord API with per-route bucket tracking
// and 429 backoff. One client is shared by every service in the process.
type Client struct {
	baseURL            string
	botToken           string
	buckets            *BucketStore
	httpClient         *http.Client
	retryAfterFallback time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://discord.com/api/v10"
	}
	buckets := opts.Buckets
	if buckets == nil {
		buckets = NewBucketStore()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DiscordRequestTimeout}
	}
	fallback := opts.RetryAfterFallback
	if fallback <= 0 {
		fallback = config.DiscordRetryAfterFallback
	}
	return &Client{
		baseURL:            baseURL,
		botToken:           opts.BotToken,
		buckets:            buckets,
		httpClient:         httpClient,
		retryAfterFallback: fallback,
	}
}

// BotCredential returns the application's elevated credential.
func (c *Client) BotCredential() Credential {
	return Bot(c.botToken)
}

// Do executes one API call. route keys the rate-limit bucket and should fold
// in the major path parameter (guild or channel id) the way Discord buckets
// its limits; path is the concrete request path.
//
// Behavior, in order: suspend on an exhausted bucket, dispatch, record
// rate-limit headers regardless of outcome, honor a 429 by waiting out the
// server-supplied retry-after and re-issuing the request (once per 429
// received; repeated 429s re-apply naturally), and surface any other non-2xx
// as *APIError.
func (c *Client) Do(ctx context.Context, cred Credential, method, route, path string, body any) ([]byte, error) {
	if err := c.buckets.Wait(ctx, route); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", cred.header())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord request failed: %w", err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	c.updateBucket(route, resp.Header)

	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		delay := retryAfter(resp.Header, respBody)
		if delay <= 0 {
			delay = c.retryAfterFallback
		}
		log.Warn().
			Str("route", route).
			Dur("retryAfter", delay).
			Msg("discord rate limited, backing off")
		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
		return c.Do(ctx, cred, method, route, path, body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *Client) updateBucket(route string, hdr http.Header) {
	remainingRaw := hdr.Get("X-RateLimit-Remaining")
	resetAfterRaw := hdr.Get("X-RateLimit-Reset-After")
	if remainingRaw == "" || resetAfterRaw == "" {
		return
	}
	remaining, err := strconv.Atoi(remainingRaw)
	if err != nil {
		return
	}
	resetAfter, err := strconv.ParseFloat(resetAfterRaw, 64)
	if err != nil {
		return
	}
	c.buckets.Update(route, remaining, time.Duration(resetAfter*float64(time.Second)))
}

// retryAfter reads the wait from a 429. The header carries whole seconds;
// the JSON body carries fractional seconds and wins when present.
func retryAfter(hdr http.Header, body []byte) time.Duration {
	var parsed struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.RetryAfter > 0 {
		return time.Duration(parsed.RetryAfter * float64(time.Second))
	}
	if raw := hdr.Get("Retry-After"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: strings.TrimSpace(string(body))}
	var parsed struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Code = parsed.Code
		if parsed.Message != "" {
			apiErr.Message = parsed.Message
		}
	}
	return apiErr
}
