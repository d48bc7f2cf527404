// Package skills loads skill metadata (names, icons) from the GW2 public API.
package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"foxie/internal/logging"
)

// ErrLoad is returned when skill metadata cannot be fetched.
var ErrLoad = errors.New("skill metadata load failed")

// maxBatch is the id limit of a single /v2/skills request.
const maxBatch = 200

// Skill is the metadata foxie needs for a skill.
type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Loader loads metadata for a set of skill ids.
type Loader interface {
	Load(ctx context.Context, ids []int64) (map[int64]Skill, error)
}

// Client is a Loader backed by the GW2 API with an in-memory cache.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu    sync.Mutex
	cache map[int64]Skill
	// missing remembers ids the API did not know so they are not asked for again.
	missing map[int64]struct{}
}

// NewClient creates a Client for baseURL (e.g. https://api.guildwars2.com/v2/skills).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		cache:   make(map[int64]Skill),
		missing: make(map[int64]struct{}),
	}
}

// Load returns metadata for ids, fetching the ones not yet cached in batches.
// Ids unknown to the API are absent from the result.
func (c *Client) Load(ctx context.Context, ids []int64) (map[int64]Skill, error) {
	out := make(map[int64]Skill, len(ids))
	var todo []int64
	c.mu.Lock()
	for _, id := range ids {
		if s, ok := c.cache[id]; ok {
			out[id] = s
			continue
		}
		if _, ok := c.missing[id]; ok {
			continue
		}
		todo = append(todo, id)
	}
	c.mu.Unlock()

	todo = dedupe(todo)
	for start := 0; start < len(todo); start += maxBatch {
		end := start + maxBatch
		if end > len(todo) {
			end = len(todo)
		}
		batch := todo[start:end]
		got, err := c.fetch(ctx, batch)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		for _, id := range batch {
			s, ok := got[id]
			if !ok {
				c.missing[id] = struct{}{}
				continue
			}
			c.cache[id] = s
			out[id] = s
		}
		c.mu.Unlock()
	}
	logging.FromContext(ctx).Debug("skills loaded", "requested", len(ids), "fetched", len(todo))
	return out, nil
}

func (c *Client) fetch(ctx context.Context, ids []int64) (map[int64]Skill, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	endpoint := c.BaseURL + "?ids=" + strings.Join(parts, ",")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
	case http.StatusNotFound:
		// every id in the batch is unknown
		return map[int64]Skill{}, nil
	default:
		return nil, fmt.Errorf("%w: status %d", ErrLoad, resp.StatusCode)
	}

	var list []Skill
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	got := make(map[int64]Skill, len(list))
	for _, s := range list {
		got[s.ID] = s
	}
	return got, nil
}

func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return ids
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
