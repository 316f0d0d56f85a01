package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shuhei10/whquiz/internal/kv"
	"github.com/shuhei10/whquiz/internal/quiz"
)

// cacheKey is the per-grade key for the last successful payload.
func cacheKey(grade quiz.Grade) string {
	return fmt.Sprintf("whq:cache:g%d", grade)
}

// HTTPSource fetches grade question files and theme metadata from a
// static base URL, mirroring the published layout
// (questions/grade<g>.json and questions/themes.json). The last
// successful payload per grade is cached in the key-value store and
// read back only when a fresh load fails.
type HTTPSource struct {
	base   string
	client *http.Client
	cache  kv.Store
}

// NewHTTPSource creates an HTTPSource. cache may be nil to disable the
// offline fallback.
func NewHTTPSource(baseURL string, client *http.Client, cache kv.Store) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSource{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
		cache:  cache,
	}
}

// LoadPool fetches questions and themes for the grade. On transport
// failure it falls back to the cached payload if one exists, otherwise
// the fetch error propagates. Malformed entries never trigger the
// fallback; they are dropped individually.
func (s *HTTPSource) LoadPool(ctx context.Context, grade quiz.Grade) (*Payload, error) {
	rawQuestions, qErr := fetchJSON[[]json.RawMessage](ctx, s.client, fmt.Sprintf("%s/questions/grade%d.json", s.base, grade))
	rawThemes, tErr := fetchJSON[[]json.RawMessage](ctx, s.client, fmt.Sprintf("%s/questions/themes.json", s.base))

	if qErr != nil || tErr != nil {
		err := qErr
		if err == nil {
			err = tErr
		}
		if cached := s.readCache(ctx, grade); cached != nil {
			return cached, nil
		}
		return nil, fmt.Errorf("load pool for grade %d: %w", grade, err)
	}

	payload := &Payload{
		SavedAt:   time.Now().UTC(),
		Questions: Sanitize(decodeEach[quiz.Question](rawQuestions), grade),
		Themes:    ThemesForGrade(decodeEach[quiz.Theme](rawThemes), grade),
		Origin:    OriginNetwork,
	}
	s.writeCache(ctx, grade, payload)
	return payload, nil
}

// decodeEach decodes elements one at a time so a single malformed
// record is dropped instead of rejecting the whole payload.
func decodeEach[T any](raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *HTTPSource) readCache(ctx context.Context, grade quiz.Grade) *Payload {
	if s.cache == nil {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, cacheKey(grade))
	if err != nil || !ok {
		return nil
	}
	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	payload.Origin = OriginCache
	return &payload
}

func (s *HTTPSource) writeCache(ctx context.Context, grade quiz.Grade, payload *Payload) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	// Cache write failures are ignored; the network payload is still good.
	_ = s.cache.Set(ctx, cacheKey(grade), string(raw))
}

func fetchJSON[T any](ctx context.Context, client *http.Client, url string) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, fmt.Errorf("decode %s: %w", url, err)
	}
	return out, nil
}
