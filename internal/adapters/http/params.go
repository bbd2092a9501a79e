package httpadapter

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/oapi-codegen/runtime"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

type overviewParams struct {
	Role          *string
	Lifecycle     *string
	Search        *string
	IncludeHidden *bool
	Sort          *string
}

func bindOverviewQuery(r *http.Request) (domain.OverviewQuery, error) {
	var p overviewParams
	query := r.URL.Query()
	bindings := []struct {
		name string
		dest any
	}{
		{"role", &p.Role},
		{"lifecycle", &p.Lifecycle},
		{"q", &p.Search},
		{"include_hidden", &p.IncludeHidden},
		{"sort", &p.Sort},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return domain.OverviewQuery{}, domain.WrapError(domain.ErrInvalidInput, "bind overview query", err)
		}
	}

	return domain.OverviewQuery{
		RoleLabel:     strings.TrimSpace(deref(p.Role)),
		Lifecycle:     domain.LifecycleStatus(deref(p.Lifecycle)),
		Search:        deref(p.Search),
		IncludeHidden: p.IncludeHidden != nil && *p.IncludeHidden,
		Sort:          domain.OverviewSort(deref(p.Sort)),
	}, nil
}

// bindPathParam decodes one simple-style path segment. The mux runs with
// encoded paths, so escaped slashes survive inside a segment.
func bindPathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, mux.Vars(r)[name], &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "bind path parameter", err)
	}
	return value, nil
}

func bindOptionalQuery(r *http.Request, name string) (string, error) {
	var value *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &value); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "bind query parameter", err)
	}
	return deref(value), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
