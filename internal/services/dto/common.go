package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PaginatedResponse is the envelope for paginated lists. Next and Previous
// are absolute URLs or null.
type PaginatedResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Page is a page of results before the HTTP layer adds links.
type Page[T any] struct {
	Items    []T
	Total    int64
	Number   int
	PageSize int
}

func (p Page[T]) HasNext() bool {
	return int64(p.Number*p.PageSize) < p.Total
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// URLResolver turns a storage key into a download URL.
type URLResolver func(key string) string

func resolve(r URLResolver, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	if r == nil {
		return key
	}
	url := r(*key)
	if url == "" {
		return nil
	}
	return &url
}

// Money is a numeric(10,2) amount. It is written as a decimal string
// ("50000.00") and read from either a JSON number or a string.
type Money float64

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%.2f", float64(m)))
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*m = Money(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid decimal %q", v)
		}
		*m = Money(f)
	default:
		return fmt.Errorf("invalid decimal value")
	}
	return nil
}
