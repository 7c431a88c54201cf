package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/migios-apps/migios-console-api/pkg/config"
	"github.com/migios-apps/migios-console-api/pkg/coreapi"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

// Kind names one searchable catalog.
type Kind string

const (
	KindMembers        Kind = "members"
	KindEmployees      Kind = "employees"
	KindPackages       Kind = "packages"
	KindProducts       Kind = "products"
	KindPaymentMethods Kind = "payment-methods"
)

// ErrStaleQuery marks a result superseded by a newer query on the same scope.
// Callers drop the response instead of rendering it.
var ErrStaleQuery = errors.New("query superseded by a newer one")

// kindRoute binds a Kind to its core API resource and search column.
type kindRoute struct {
	resource     string
	searchColumn string
	sortColumn   string
}

var kindRoutes = map[Kind]kindRoute{
	KindMembers:        {resource: "members", searchColumn: "name", sortColumn: "name"},
	KindEmployees:      {resource: "employees", searchColumn: "name", sortColumn: "name"},
	KindPackages:       {resource: "packages", searchColumn: "name", sortColumn: "name"},
	KindProducts:       {resource: "products", searchColumn: "name", sortColumn: "name"},
	KindPaymentMethods: {resource: "payment-methods", searchColumn: "name", sortColumn: "name"},
}

// ParseKind validates a path segment against the known catalogs.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(raw)
	if _, ok := kindRoutes[kind]; !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown search kind %q", raw))
	}
	return kind, nil
}

// Option is one typeahead suggestion.
type Option struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	IsCash bool   `json:"is_cash,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Price  string `json:"price,omitempty"`
}

// Result is one resolved typeahead page.
type Result struct {
	Options  []Option `json:"options"`
	HasMore  bool     `json:"has_more"`
	NextPage int      `json:"next_page,omitempty"`
	Token    uint64   `json:"token"`
}

// Query describes one typeahead request.
type Query struct {
	Kind  Kind
	Text  string
	Page  int
	Token uint64
}

// tokenRegistry hands out monotonically increasing tokens per scope and
// remembers the newest one. A response whose token is no longer the newest is
// discarded, so a slow early query can never overwrite a later one's results.
type tokenRegistry struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func (r *tokenRegistry) next(scope string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest[scope]++
	return r.latest[scope]
}

func (r *tokenRegistry) isCurrent(scope string, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest[scope] == token
}

type lister interface {
	List(ctx context.Context, resource string, params coreapi.ListParams, out any) (*coreapi.ListMeta, error)
}

type pageCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SearchCacheKey(kind, query string, page int) string
}

// Service resolves typeahead queries against the core API, with a short Redis
// page cache to absorb repeated keystrokes.
type Service struct {
	core   lister
	cache  pageCache
	cfg    config.SearchConfig
	logger *logger.Logger
	tokens tokenRegistry
}

// NewService wires the typeahead resolver.
func NewService(core lister, cache pageCache, cfg config.SearchConfig, logg *logger.Logger) (*Service, error) {
	if core == nil {
		return nil, errors.New("search service requires a core api client")
	}
	if logg == nil {
		return nil, errors.New("search service requires a logger")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return &Service{
		core:   core,
		cache:  cache,
		cfg:    cfg,
		logger: logg,
		tokens: tokenRegistry{latest: map[string]uint64{}},
	}, nil
}

// NextToken registers a new query on the scope and returns its token. Issuing
// a token implicitly invalidates every in-flight query on the same scope.
func (s *Service) NextToken(scope string, kind Kind) uint64 {
	return s.tokens.next(scope + "/" + string(kind))
}

// Search resolves one page of suggestions. Returns ErrStaleQuery when a newer
// token was issued on the scope while this query was in flight.
func (s *Service) Search(ctx context.Context, scope string, q Query) (*Result, error) {
	route, ok := kindRoutes[q.Kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown search kind %q", q.Kind))
	}
	if q.Page < 1 {
		q.Page = 1
	}

	tokenScope := scope + "/" + string(q.Kind)

	if cached := s.fromCache(ctx, q); cached != nil {
		if !s.tokens.isCurrent(tokenScope, q.Token) {
			return nil, ErrStaleQuery
		}
		cached.Token = q.Token
		return cached, nil
	}

	params := coreapi.ListParams{
		Page:       q.Page,
		PerPage:    s.cfg.PageSize,
		SortColumn: route.sortColumn,
		SortType:   "asc",
	}
	if q.Text != "" {
		params.Search = []coreapi.SearchClause{{
			SearchColumn:    route.searchColumn,
			SearchCondition: "like",
			SearchText:      q.Text,
		}}
	}

	var rows []Option
	meta, err := s.core.List(ctx, route.resource, params, &rows)
	if err != nil {
		return nil, err
	}

	result := &Result{Options: rows, HasMore: meta.HasMore()}
	if result.Options == nil {
		result.Options = []Option{}
	}
	if result.HasMore {
		result.NextPage = meta.Page + 1
	}

	s.toCache(ctx, q, result)

	// Staleness is checked after the fetch: the page is cached either way, but
	// only the newest query gets to render.
	if !s.tokens.isCurrent(tokenScope, q.Token) {
		return nil, ErrStaleQuery
	}
	result.Token = q.Token
	return result, nil
}

func (s *Service) fromCache(ctx context.Context, q Query) *Result {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.SearchCacheKey(string(q.Kind), q.Text, q.Page))
	if err != nil {
		return nil
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	return &result
}

func (s *Service) toCache(ctx context.Context, q Query, result *Result) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return
	}
	key := s.cache.SearchCacheKey(string(q.Kind), q.Text, q.Page)
	if err := s.cache.Set(ctx, key, string(encoded), s.cfg.CacheTTL); err != nil {
		s.logger.Error(ctx, "search page cache write failed", err)
	}
}
