// Package enumerate expands a geographic scope and query configuration
// into the deterministic, ordered work-item sequence driving a run.
package enumerate

import (
	"log/slog"
	"sort"

	"reperio/internal/domain"
)

// presetQueries is the generic high-recall set used when combined search is
// enabled without any brand or service selection.
var presetQueries = []string{
	"réparation téléphone",
	"réparation smartphone",
	"réparation tablette",
	"réparateur mobile",
	"réparation écran téléphone",
}

type Service struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Service { return &Service{log: logger} }

// Enumerate produces the ordered work items for a scope and query config.
// Ordering is deterministic (department order, then locality order, then
// query order) so progress percentages are reproducible. Unknown codes
// degrade to smaller enumerations, never to an error.
func (s *Service) Enumerate(scope domain.Scope, queries domain.QueryConfig) []domain.WorkItem {
	locs := s.localities(scope)
	specs := BuildQueries(queries)

	items := make([]domain.WorkItem, 0, len(locs)*len(specs))
	for _, loc := range locs {
		for _, q := range specs {
			items = append(items, domain.WorkItem{Locality: loc, Query: q})
		}
	}
	return items
}

// Localities returns just the locality sequence of a scope, in work-item
// order. The orchestrator uses its length for progress percentages.
func (s *Service) Localities(scope domain.Scope) []domain.Locality {
	return s.localities(scope)
}

func (s *Service) localities(scope domain.Scope) []domain.Locality {
	switch scope.Kind {
	case domain.ScopeCity:
		if scope.City == "" {
			s.log.Warn("city scope without a city, empty enumeration")
			return nil
		}
		return []domain.Locality{{Name: scope.City}}

	case domain.ScopeDepartment:
		return s.departmentLocalities(scope.Department, scope.Exhaustive)

	case domain.ScopeRegion:
		codes, ok := regions[scope.Region]
		if !ok {
			s.log.Warn("unknown region, empty enumeration", "region", scope.Region)
			return nil
		}
		var out []domain.Locality
		for _, code := range codes {
			out = append(out, s.departmentLocalities(code, scope.Exhaustive)...)
		}
		return out

	default:
		s.log.Warn("unknown scope kind, empty enumeration", "kind", string(scope.Kind))
		return nil
	}
}

func (s *Service) departmentLocalities(code string, exhaustive bool) []domain.Locality {
	dep, ok := departments[code]
	if !ok {
		s.log.Warn("unknown department code, skipped", "department", code)
		return nil
	}
	principal := domain.Locality{
		Name:           dep.PrincipalCity,
		PostalCode:     dep.PostalCode,
		DepartmentCode: code,
	}
	if !exhaustive {
		return []domain.Locality{principal}
	}
	cities, ok := subLocalities[code]
	if !ok {
		// No curated list for this department; the principal city stands in.
		return []domain.Locality{principal}
	}
	out := make([]domain.Locality, 0, len(cities))
	for _, city := range cities {
		loc := domain.Locality{Name: city, DepartmentCode: code}
		if city == dep.PrincipalCity {
			loc.PostalCode = dep.PostalCode
		}
		out = append(out, loc)
	}
	return out
}

// BuildQueries turns a query config into query specs. Combined search with
// selections is a union — one spec per selected brand plus one per selected
// service — not a brand×service cross-product, which bounds provider calls
// to |brands|+|services|.
func BuildQueries(cfg domain.QueryConfig) []domain.QuerySpec {
	if !cfg.Combined {
		text := cfg.Text
		if text == "" {
			text = presetQueries[0]
		}
		return []domain.QuerySpec{{Text: text}}
	}

	if len(cfg.Brands) == 0 && len(cfg.Services) == 0 {
		specs := make([]domain.QuerySpec, 0, len(presetQueries))
		for _, q := range presetQueries {
			specs = append(specs, domain.QuerySpec{Text: q})
		}
		return specs
	}

	brands := sortedCopy(cfg.Brands)
	services := sortedCopy(cfg.Services)
	specs := make([]domain.QuerySpec, 0, len(brands)+len(services))
	for _, b := range brands {
		specs = append(specs, domain.QuerySpec{Text: "réparation " + b})
	}
	for _, svc := range services {
		specs = append(specs, domain.QuerySpec{Text: "réparation " + svc})
	}
	return specs
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
