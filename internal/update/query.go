package update

import (
	"fmt"
	"sort"
	"strings"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/vercmp"
)

// SortField is a whitelisted ordering for update listings.
type SortField string

const (
	SortVersion     SortField = "version"
	SortReleaseDate SortField = "releaseDate"
	SortID          SortField = "id"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParseSort maps a request parameter to a SortField. Empty means version.
func ParseSort(s string) (SortField, error) {
	switch SortField(s) {
	case "", SortVersion:
		return SortVersion, nil
	case SortReleaseDate:
		return SortReleaseDate, nil
	case SortID:
		return SortID, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown sort field %q", s))
}

// Query selects a page of the catalog. The keyword matches version or description.
type Query struct {
	ApplicationID int64
	Keyword       string
	Sort          SortField
	Desc          bool
	Page          int
	PageSize      int
}

// Page is one page of a query result.
type Page struct {
	Items    []Update `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

func (q Query) normalized() Query {
	q.Keyword = strings.TrimSpace(q.Keyword)
	if q.Sort == "" {
		q.Sort = SortVersion
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// less orders two updates by the query's sort field, ties by id.
func (q Query) less(a, b *Update) bool {
	var c int
	switch q.Sort {
	case SortReleaseDate:
		c = a.ReleaseDate.Compare(b.ReleaseDate)
	case SortID:
		c = 0
	default:
		c = vercmp.Compare(a.Version, b.Version)
	}
	if c == 0 {
		c = cmpInt64(a.UpdateID, b.UpdateID)
	}
	if q.Desc {
		return c > 0
	}
	return c < 0
}

// apply sorts and slices an already filtered list.
func (q Query) apply(all []Update) Page {
	sort.SliceStable(all, func(i, j int) bool { return q.less(&all[i], &all[j]) })

	p := Page{Total: len(all), Page: q.Page, PageSize: q.PageSize, Items: []Update{}}
	// compare page counts first so huge page numbers cannot overflow the offset
	if q.Page-1 >= (len(all)+q.PageSize-1)/q.PageSize {
		return p
	}
	start := (q.Page - 1) * q.PageSize
	end := min(start+q.PageSize, len(all))
	p.Items = all[start:end]
	return p
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
