package arkham

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/brock0312/solana-token-analysis/internal/logging"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpProvider is a minimal REST client for the intelligence API.
// It intentionally leaves rate limiting to wrappers (RLProvider, etc.).
type httpProvider struct {
	baseURL     string
	apiKey      string
	providerLbl string
	hc          httpDoer
	maxRetries  int
	backoffBase time.Duration
	entCache    *entityCache
}

const (
	defaultEntityCacheSize = 1024
	defaultEntityCacheTTL  = 15 * time.Minute
)

// NewHTTPProvider constructs a REST provider using the given http.Client (or a default one if nil).
func NewHTTPProvider(baseURL, apiKey string, client *http.Client) (Provider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("empty base URL")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &httpProvider{
		baseURL:     baseURL,
		apiKey:      apiKey,
		providerLbl: deriveProviderLabel(baseURL),
		hc:          client,
		maxRetries:  2,
		backoffBase: time.Second,
		entCache:    newEntityCache(defaultEntityCacheSize, defaultEntityCacheTTL),
	}, nil
}

func deriveProviderLabel(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	return endpoint
}

// get issues one GET with retries. Non-2xx statuses of 5xx/429 and network
// errors are retried with a fixed backoff; other statuses fail immediately.
func (p *httpProvider) get(ctx context.Context, path string, query url.Values, out any) (err error) {
	endpoint := pathLabel(path)
	requestsTotal.WithLabelValues(p.providerLbl, endpoint).Inc()
	defer func() {
		if err != nil {
			requestFailures.WithLabelValues(p.providerLbl, endpoint).Inc()
		}
	}()

	u := p.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var lastErr error
	attempts := p.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			requestRetries.WithLabelValues(p.providerLbl, endpoint).Inc()
		}
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if reqErr != nil {
			return reqErr
		}
		if p.apiKey != "" {
			req.Header.Set("API-Key", p.apiKey)
		}
		req.Header.Set("Accept", "application/json")
		resp, doErr := p.hc.Do(req)
		if doErr != nil {
			lastErr = doErr
		} else {
			retriable := false
			func() {
				defer func() { _ = resp.Body.Close() }()
				if resp.StatusCode/100 != 2 {
					b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
					lastErr = fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
					retriable = resp.StatusCode == 429 || resp.StatusCode >= 500
					return
				}
				lastErr = json.NewDecoder(resp.Body).Decode(out)
			}()
			if lastErr == nil {
				return nil
			}
			if resp.StatusCode/100 == 2 || !retriable {
				return lastErr
			}
		}
		if attempt < attempts-1 {
			t := time.NewTimer(p.backoffBase)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	return lastErr
}

// pathLabel collapses per-address paths into a stable metric label.
func pathLabel(path string) string {
	switch {
	case path == "/transfers":
		return "transfers"
	case len(path) > len("/intelligence/address/") && path[:len("/intelligence/address/")] == "/intelligence/address/":
		return "intelligence"
	case len(path) > len("/history/address/") && path[:len("/history/address/")] == "/history/address/":
		return "history"
	}
	return "other"
}

type nameObj struct {
	Name string `json:"name"`
}

type intelligenceResponse struct {
	Entity *nameObj `json:"arkhamEntity"`
	Label  *nameObj `json:"arkhamLabel"`
}

func (p *httpProvider) LookupEntity(ctx context.Context, address, chain string) (EntityInfo, error) {
	key := chain + "/" + address
	if p.entCache != nil {
		if info, ok := p.entCache.get(key, time.Now()); ok {
			return info, nil
		}
	}
	var raw intelligenceResponse
	q := url.Values{}
	if chain != "" {
		q.Set("chain", chain)
	}
	if err := p.get(ctx, "/intelligence/address/"+url.PathEscape(address), q, &raw); err != nil {
		return EntityInfo{}, err
	}
	info := EntityInfo{}
	if raw.Entity != nil {
		info.EntityName = raw.Entity.Name
	}
	if raw.Label != nil {
		info.LabelName = raw.Label.Name
	}
	if p.entCache != nil {
		p.entCache.add(key, info, time.Now())
	}
	return info, nil
}

type transferRecord struct {
	FromAddress *struct {
		Address string `json:"address"`
	} `json:"fromAddress"`
	ToAddress *struct {
		Address string `json:"address"`
	} `json:"toAddress"`
	FromEntity     *nameObj `json:"fromAddressEntity"`
	FromLabel      *nameObj `json:"fromAddressLabel"`
	BlockTimestamp string   `json:"blockTimestamp"`
}

func (p *httpProvider) Transfers(ctx context.Context, q TransferQuery) ([]Transfer, error) {
	params := url.Values{}
	if q.Chain != "" {
		params.Set("chain", q.Chain)
	}
	switch {
	case q.From != "":
		params.Set("from", q.From)
	case q.To != "":
		params.Set("to", q.To)
	case q.Base != "":
		params.Set("base", q.Base)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	sortKey := q.SortKey
	if sortKey == "" {
		sortKey = "time"
	}
	sortDir := q.SortDir
	if sortDir == "" {
		sortDir = "asc"
	}
	params.Set("sortKey", sortKey)
	params.Set("sortDir", sortDir)

	var raw json.RawMessage
	if err := p.get(ctx, "/transfers", params, &raw); err != nil {
		return nil, err
	}
	return normalizeTransfers(raw)
}

// normalizeTransfers accepts both response shapes the API is known to emit:
// a bare array of records, or an object wrapping the array under "transfers".
// Absent or null payloads normalize to an empty slice.
func normalizeTransfers(raw json.RawMessage) ([]Transfer, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var records []transferRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		var wrapped struct {
			Transfers []transferRecord `json:"transfers"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("unrecognized transfers payload: %w", err)
		}
		records = wrapped.Transfers
	}
	out := make([]Transfer, 0, len(records))
	for _, r := range records {
		t := Transfer{}
		if r.FromAddress != nil {
			t.From = r.FromAddress.Address
		}
		if r.ToAddress != nil {
			t.To = r.ToAddress.Address
		}
		if r.FromEntity != nil {
			t.FromEntity = r.FromEntity.Name
		}
		if r.FromLabel != nil {
			t.FromLabel = r.FromLabel.Name
		}
		if r.BlockTimestamp != "" {
			if ts, err := time.Parse(time.RFC3339, r.BlockTimestamp); err == nil {
				t.Time = ts.UTC()
			} else {
				logging.Logger().Debug("transfer_timestamp_unparsed",
					"component", "arkham.http_provider",
					"timestamp", r.BlockTimestamp)
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *httpProvider) History(ctx context.Context, address, chain string) ([]HistoryPoint, error) {
	q := url.Values{}
	if chain != "" {
		q.Set("chain", chain)
	}
	// The history endpoint keys its series by chain name.
	var raw map[string][]struct {
		Time string `json:"time"`
	}
	if err := p.get(ctx, "/history/address/"+url.PathEscape(address), q, &raw); err != nil {
		return nil, err
	}
	series := raw[chain]
	out := make([]HistoryPoint, 0, len(series))
	for _, pt := range series {
		ts, err := time.Parse(time.RFC3339, pt.Time)
		if err != nil {
			continue
		}
		out = append(out, HistoryPoint{Time: ts.UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

type entityCacheEntry struct {
	key       string
	value     EntityInfo
	expiresAt time.Time
}

// entityCache is a small LRU+TTL memo for entity lookups. The trace engine
// re-resolves the same funder addresses across a batch; entries are written
// at most once per TTL window and are read-mostly.
type entityCache struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	entries map[string]*list.Element
	ordered *list.List
}

func newEntityCache(max int, ttl time.Duration) *entityCache {
	if max <= 0 {
		max = defaultEntityCacheSize
	}
	if ttl <= 0 {
		ttl = defaultEntityCacheTTL
	}
	return &entityCache{
		max:     max,
		ttl:     ttl,
		entries: make(map[string]*list.Element, max),
		ordered: list.New(),
	}
}

func (c *entityCache) get(key string, now time.Time) (EntityInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entityCacheEntry)
		if !now.Before(e.expiresAt) {
			c.removeElement(el)
			return EntityInfo{}, false
		}
		c.ordered.MoveToFront(el)
		return e.value, true
	}
	return EntityInfo{}, false
}

func (c *entityCache) add(key string, value EntityInfo, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entityCacheEntry)
		e.value = value
		e.expiresAt = now.Add(c.ttl)
		c.ordered.MoveToFront(el)
		return
	}
	entry := &entityCacheEntry{key: key, value: value, expiresAt: now.Add(c.ttl)}
	el := c.ordered.PushFront(entry)
	c.entries[key] = el
	c.evict(now)
}

func (c *entityCache) evict(now time.Time) {
	for el := c.ordered.Back(); el != nil; {
		e := el.Value.(*entityCacheEntry)
		if now.Before(e.expiresAt) {
			break
		}
		prev := el.Prev()
		c.removeElement(el)
		el = prev
	}
	for c.ordered.Len() > c.max {
		c.removeElement(c.ordered.Back())
	}
}

func (c *entityCache) removeElement(el *list.Element) {
	entry := el.Value.(*entityCacheEntry)
	delete(c.entries, entry.key)
	c.ordered.Remove(el)
}
