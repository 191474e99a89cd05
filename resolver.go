package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"stellarforge/internal/oracle"
)

var ErrNoCompleter = errors.New("no completion capability configured")

// Resolver maps an unordered pair of element names to an outcome.
// Implementations must be symmetric in a and b.
type Resolver interface {
	Resolve(ctx context.Context, a, b string) (Outcome, error)
}

// Completer is the external generative capability used on a table miss.
type Completer interface {
	Complete(ctx context.Context, a, b string) (oracle.Completion, error)
}

type StaticResolver struct {
	book RecipeBook
}

func NewStaticResolver(book RecipeBook) *StaticResolver {
	return &StaticResolver{book: book}
}

func (r *StaticResolver) Resolve(ctx context.Context, a, b string) (Outcome, error) {
	return lookup(r.book, PairKey(a, b)), nil
}

func lookup(book RecipeBook, key string) Outcome {
	recipe, ok := book[key]
	switch {
	case !ok:
		return Outcome{Kind: NoReaction}
	case recipe.IsExplosion:
		return Outcome{Kind: Explosion}
	default:
		return Outcome{Kind: NewElement, Element: recipe.Element}
	}
}

// RecipeCache memoizes generated recipes by pair key. The first value stored
// for a key is permanent until Clear.
type RecipeCache struct {
	mu      sync.RWMutex
	entries map[string]Element
}

func NewRecipeCache() *RecipeCache {
	return &RecipeCache{entries: make(map[string]Element)}
}

func (c *RecipeCache) Get(key string) (Element, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	el, ok := c.entries[key]
	return el, ok
}

// Remember stores el under key unless a value is already present, and
// returns whichever value is now cached.
func (c *RecipeCache) Remember(key string, el Element) Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = el
	return el
}

func (c *RecipeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *RecipeCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Element)
	c.mu.Unlock()
}

// Replace swaps in entries loaded from storage.
func (c *RecipeCache) Replace(entries map[string]Element) {
	c.mu.Lock()
	c.entries = make(map[string]Element, len(entries))
	for k, v := range entries {
		c.entries[k] = v
	}
	c.mu.Unlock()
}

// Entries returns the cached recipes sorted by key.
func (c *RecipeCache) Entries() []entry[Element] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entry[Element], 0, len(c.entries))
	for k, v := range c.entries {
		out = append(out, entry[Element]{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// AugmentedResolver consults the static book, then the recipe cache, then the
// completion capability. Concurrent misses for the same pair share one call.
// The shared call runs detached from any single caller's context with its own
// timeout; each caller still stops waiting when its own context ends.
type AugmentedResolver struct {
	book    RecipeBook
	cache   *RecipeCache
	oracle  Completer
	flight  singleflight.Group
	timeout time.Duration
	now     func() time.Time
	log     *slog.Logger
}

func NewAugmentedResolver(book RecipeBook, cache *RecipeCache, oracle Completer, log *slog.Logger) *AugmentedResolver {
	if log == nil {
		log = slog.Default()
	}
	return &AugmentedResolver{
		book:    book,
		cache:   cache,
		oracle:  oracle,
		timeout: completionTimeout,
		now:     time.Now,
		log:     log,
	}
}

func (r *AugmentedResolver) Resolve(ctx context.Context, a, b string) (Outcome, error) {
	key := PairKey(a, b)
	if out := lookup(r.book, key); out.Kind != NoReaction {
		return out, nil
	}
	if el, ok := r.cache.Get(key); ok {
		return Outcome{Kind: NewElement, Element: el}, nil
	}
	if r.oracle == nil {
		return Outcome{Kind: NoReaction}, ErrNoCompleter
	}

	first, second := a, b
	if second < first {
		first, second = second, first
	}
	ch := r.flight.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		c, err := r.oracle.Complete(callCtx, first, second)
		if err != nil {
			return nil, err
		}
		el := Element{
			Name:         capitalize(strings.TrimSpace(c.Name)),
			Glyph:        strings.TrimSpace(c.Glyph),
			DiscoveredAt: r.now().UnixMilli(),
		}
		return r.cache.Remember(key, el), nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Outcome{Kind: NoReaction}, fmt.Errorf("complete %s: %w", key, ctx.Err())
	}
	if res.Err != nil {
		r.log.Warn("completion failed", "pair", key, "error", res.Err)
		return Outcome{Kind: NoReaction}, fmt.Errorf("complete %s: %w", key, res.Err)
	}
	r.log.Debug("completion resolved", "pair", key, "shared", res.Shared)
	return Outcome{Kind: NewElement, Element: res.Val.(Element)}, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
