package coreapi

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// SearchClause mirrors one filter entry of the core API's `search` query array.
type SearchClause struct {
	SearchColumn    string `json:"search_column"`
	SearchCondition string `json:"search_condition"`
	SearchText      string `json:"search_text"`
	SearchOperator  string `json:"search_operator,omitempty"`
}

// ListParams carries the paging/sorting/filtering contract of list endpoints.
type ListParams struct {
	Page       int
	PerPage    int
	SortColumn string
	SortType   string
	Search     []SearchClause
}

// ListMeta is the pagination block returned alongside list rows.
type ListMeta struct {
	Page      int `json:"page"`
	TotalPage int `json:"total_page"`
	Total     int `json:"total"`
}

// HasMore reports whether pages remain after the current one.
func (m ListMeta) HasMore() bool {
	return m.Page < m.TotalPage
}

func (p ListParams) encode() (url.Values, error) {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.SortColumn != "" {
		values.Set("sort_column", p.SortColumn)
	}
	if p.SortType != "" {
		values.Set("sort_type", p.SortType)
	}
	if len(p.Search) > 0 {
		encoded, err := json.Marshal(p.Search)
		if err != nil {
			return nil, err
		}
		values.Set("search", string(encoded))
	}
	return values, nil
}

type listEnvelope struct {
	Data struct {
		Data json.RawMessage `json:"data"`
		Meta ListMeta        `json:"meta"`
	} `json:"data"`
}
