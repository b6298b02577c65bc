package webhook

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
)

// DefaultUnmatchedCacheSize bounds how many distinct unmatched keys are
// remembered for log de-duplication.
const DefaultUnmatchedCacheSize = 256

// Resolver turns raw change values into typed ChangeValues. It is safe for
// concurrent use.
type Resolver struct {
	registry  *Registry
	mapper    *graphmap.Mapper
	log       *slog.Logger
	unmatched *lru.Cache[string, struct{}]
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for unmatched-key diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMapper sets the mapper used to decode registered shapes.
func WithMapper(m *graphmap.Mapper) Option {
	return func(r *Resolver) {
		if m != nil {
			r.mapper = m
		}
	}
}

// WithRegistry replaces the built-in registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Resolver) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// NewResolver returns a Resolver over the default registry.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		registry: defaultRegistry,
		mapper:   graphmap.Default(),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	// lru.New only fails for a non-positive size.
	r.unmatched, _ = lru.New[string, struct{}](DefaultUnmatchedCacheSize)
	r.log = r.log.With(slog.String("component", "webhook"))
	return r
}

var defaultResolver = sync.OnceValue(func() *Resolver { return NewResolver() })

// Resolve maps raw onto a ChangeValue. Strings and arrays are wrapped
// directly; objects go through the registry. Keys without a registered shape
// resolve to a FallbackValue, so only mapping failures of a registered shape
// return an error.
func (r *Resolver) Resolve(field string, raw node.Value, contextualVerb string) (ChangeValue, error) {
	switch raw.Kind() {
	case node.KindString:
		s, _ := raw.Str()
		return &StringValue{ChangeMeta: ChangeMeta{key: strings.ToUpper(field)}, Value: s}, nil
	case node.KindArray:
		items, _ := raw.Array()
		return &ListValue{ChangeMeta: ChangeMeta{key: strings.ToUpper(field)}, Items: graphmap.ListOf(items...)}, nil
	case node.KindObject:
	default:
		return &FallbackValue{ChangeMeta: ChangeMeta{key: strings.ToUpper(field)}, Raw: raw}, nil
	}

	key := DiscriminatorKey(field, raw, contextualVerb)
	factory, ok := r.registry.Lookup(key)
	if !ok {
		r.logUnmatched(key, raw)
		return &FallbackValue{ChangeMeta: ChangeMeta{key: key}, Raw: raw}, nil
	}
	cv := factory()
	if err := r.mapper.Decode(raw, cv); err != nil {
		return nil, err
	}
	if k, ok := cv.(keyed); ok {
		k.setChangeKey(key)
	}
	return cv, nil
}

// logUnmatched warns on the first sighting of key and drops to debug for
// repeats still in the cache.
func (r *Resolver) logUnmatched(key string, raw node.Value) {
	level := slog.LevelWarn
	if seen, _ := r.unmatched.ContainsOrAdd(key, struct{}{}); seen {
		level = slog.LevelDebug
	}
	r.log.Log(context.Background(), level, "no shape registered for change value",
		slog.String("key", key),
		slog.String("payload", node.Stringify(raw)))
}

// Resolve uses a Resolver with default options.
func Resolve(field string, raw node.Value, contextualVerb string) (ChangeValue, error) {
	return defaultResolver().Resolve(field, raw, contextualVerb)
}
