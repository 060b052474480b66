// Package klipy fetches trending GIFs from the Klipy API.
package klipy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ErrUpstream wraps every failure of the Klipy API, including missing credentials.
var ErrUpstream = errors.New("klipy upstream error")

// Item is one trending GIF.
type Item struct {
	ID       string `json:"id"`
	MediaURL string `json:"mediaUrl"`
	Title    string `json:"title,omitempty"`
}

type trendingResponse struct {
	Data []rawItem `json:"data"`
}

type rawItem struct {
	ID    itemID `json:"id"`
	GIF   string `json:"gif"`
	Title string `json:"title"`
}

// itemID accepts both string and numeric ids.
type itemID string

func (id *itemID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = itemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = itemID(n.String())
	return nil
}

// Client calls the trending endpoint. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	apiKey     string
	customerID string
	http       *http.Client
	log        *slog.Logger
}

// New creates a client. Missing credentials are reported by FetchTrending,
// not here, so the server can start without them.
func New(baseURL, apiKey, customerID string, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		customerID: customerID,
		http:       httpClient,
		log:        log,
	}
}

// FetchTrending returns one page of trending GIFs in upstream order.
func (c *Client) FetchTrending(ctx context.Context, page, perPage int, locale string) ([]Item, error) {
	if c.apiKey == "" || c.customerID == "" {
		return nil, fmt.Errorf("%w: missing KLIPY_API_KEY or KLIPY_CUSTOMER_ID", ErrUpstream)
	}

	endpoint := fmt.Sprintf("%s/api/v1/%s/gifs/trending?%s", c.baseURL, url.PathEscape(c.apiKey), url.Values{
		"page":        {strconv.Itoa(page)},
		"per_page":    {strconv.Itoa(perPage)},
		"customer_id": {c.customerID},
		"locale":      {locale},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: API error: %s", ErrUpstream, resp.Status)
	}

	var body trendingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	items := lo.Map(body.Data, func(raw rawItem, _ int) Item {
		return Item{ID: string(raw.ID), MediaURL: raw.GIF, Title: raw.Title}
	})
	c.log.Debug("Fetched trending GIFs", "page", page, "count", len(items))
	return items, nil
}
