// Package listview applies client-side filtering, searching, and
// locale-aware sorting to pod lists for display. A View holds the
// current criteria; Apply runs them against a snapshot without
// mutating it.
package listview

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// Filterable columns. Filter, Search, and Sort reject other names.
const (
	FieldName        = "name"
	FieldNamespace   = "namespace"
	FieldStatus      = "status"
	FieldClusterName = "clusterName"
	FieldNodeName    = "nodeName"
	FieldPodIP       = "podIP"
	FieldHostIP      = "hostIP"
)

var fields = map[string]func(*models.Pod) string{
	FieldName:        func(p *models.Pod) string { return p.Name },
	FieldNamespace:   func(p *models.Pod) string { return p.Namespace },
	FieldStatus:      func(p *models.Pod) string { return p.Status },
	FieldClusterName: func(p *models.Pod) string { return p.ClusterName },
	FieldNodeName:    func(p *models.Pod) string { return p.NodeName },
	FieldPodIP:       func(p *models.Pod) string { return p.PodIP },
	FieldHostIP:      func(p *models.Pod) string { return p.HostIP },
}

// View holds filter, search, and sort state for a pod list.
type View struct {
	filters map[string]string
	search  string

	sortField string
	sortAsc   bool

	coll *collate.Collator
}

// New returns a View sorting with the collation rules of tag.
func New(tag language.Tag) *View {
	return &View{
		filters: make(map[string]string),
		coll:    collate.New(tag, collate.IgnoreCase),
	}
}

// Filter sets an exact-match criterion on a column. An empty value
// clears the column's filter. Unknown columns are ignored.
func (v *View) Filter(field, value string) {
	if _, ok := fields[field]; !ok {
		return
	}
	if value == "" {
		delete(v.filters, field)
		return
	}
	v.filters[field] = value
}

// ClearFilters removes all column filters and the search term.
func (v *View) ClearFilters() {
	v.filters = make(map[string]string)
	v.search = ""
}

// Search sets a case-insensitive substring term matched against every
// filterable column. An empty term clears the search.
func (v *View) Search(term string) {
	v.search = strings.ToLower(term)
}

// Sort orders by the given column ascending, or toggles direction when
// called again with the column already active. Unknown columns are
// ignored.
func (v *View) Sort(field string) {
	if _, ok := fields[field]; !ok {
		return
	}
	if v.sortField == field {
		v.sortAsc = !v.sortAsc
		return
	}
	v.sortField = field
	v.sortAsc = true
}

// Apply returns the pods matching the current filters and search term,
// ordered by the current sort. The input slice is not modified.
func (v *View) Apply(pods []models.Pod) []models.Pod {
	out := make([]models.Pod, 0, len(pods))
	for i := range pods {
		if v.matches(&pods[i]) {
			out = append(out, pods[i])
		}
	}

	if v.sortField == "" {
		return out
	}
	get := fields[v.sortField]
	sort.SliceStable(out, func(i, j int) bool {
		a, b := get(&out[i]), get(&out[j])
		// Empty values go last ascending, first descending.
		if a == "" || b == "" {
			if a == b {
				return false
			}
			if v.sortAsc {
				return b == ""
			}
			return a == ""
		}
		cmp := v.coll.CompareString(a, b)
		if v.sortAsc {
			return cmp < 0
		}
		return cmp > 0
	})
	return out
}

func (v *View) matches(p *models.Pod) bool {
	for field, want := range v.filters {
		if fields[field](p) != want {
			return false
		}
	}
	if v.search == "" {
		return true
	}
	for _, get := range fields {
		if strings.Contains(strings.ToLower(get(p)), v.search) {
			return true
		}
	}
	return false
}

// Options returns the unique non-empty values of a column across pods,
// sorted with the view's collation. Useful for building filter
// drop-downs. Unknown columns yield nil.
func (v *View) Options(field string, pods []models.Pod) []string {
	get, ok := fields[field]
	if !ok {
		return nil
	}
	set := make(map[string]struct{})
	for i := range pods {
		if val := get(&pods[i]); val != "" {
			set[val] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for val := range set {
		out = append(out, val)
	}
	v.coll.SortStrings(out)
	return out
}
