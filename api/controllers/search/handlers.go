package search

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/migios-apps/migios-console-api/api/middleware"
	"github.com/migios-apps/migios-console-api/api/responses"
	"github.com/migios-apps/migios-console-api/api/validators"
	"github.com/migios-apps/migios-console-api/internal/catalog"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

type searchService interface {
	NextToken(scope string, kind catalog.Kind) uint64
	Search(ctx context.Context, scope string, q catalog.Query) (*catalog.Result, error)
}

func scopeFromRequest(r *http.Request) string {
	parts := []string{
		middleware.UserIDFromContext(r.Context()),
		middleware.TerminalFromContext(r.Context()),
	}
	return strings.Join(parts, "/")
}

// Typeahead resolves one page of suggestions for a catalog kind. Without a
// token query parameter a fresh token is issued, which supersedes any query
// still in flight on the same scope.
func Typeahead(svc searchService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		kind, err := catalog.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := validators.ParseQueryUint64(r, "token")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := scopeFromRequest(r)
		if token == 0 {
			token = svc.NextToken(scope, kind)
		}

		result, err := svc.Search(r.Context(), scope, catalog.Query{
			Kind:  kind,
			Text:  strings.TrimSpace(r.URL.Query().Get("q")),
			Page:  page,
			Token: token,
		})
		if errors.Is(err, catalog.ErrStaleQuery) {
			// A newer query owns the dropdown now; tell the client to drop this
			// response instead of rendering it.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
