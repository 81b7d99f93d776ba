package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dei-tracker/web/internal/models"
)

type unwrappedPage struct {
	Data       json.RawMessage `json:"data"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

// Unwrap flattens a paginated envelope into {data,total,page,per_page,total_pages}.
// Bodies without a pagination object are returned unchanged, including bare
// arrays and {data:...} objects.
func Unwrap(body []byte) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return body, nil
	}

	raw, ok := obj["pagination"]
	if !ok || isFalsy(raw) {
		return body, nil
	}

	var p models.Pagination
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode pagination: %w", err)
	}

	data := obj["data"]
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	out, err := json.Marshal(unwrappedPage{
		Data:       data,
		Total:      p.TotalCount,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: p.TotalPages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}
	return out, nil
}

// dataOr returns body.data when it is present and truthy, otherwise body.
func dataOr(body json.RawMessage) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return body
	}
	if data, ok := obj["data"]; ok && !isFalsy(data) {
		return data
	}
	return body
}

func isFalsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}

// decodeList accepts a bare array, a bare {data:[...]} and an unwrapped page.
// Shapes without pagination metadata are reported as a single full page.
func decodeList[T any](body json.RawMessage) (*models.Page[T], error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return singlePage(items), nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}

	var page models.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if _, paged := probe["total_pages"]; !paged {
		return singlePage(page.Data), nil
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return &page, nil
}

func singlePage[T any](items []T) *models.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &models.Page[T]{
		Data:       items,
		Total:      len(items),
		Page:       1,
		PerPage:    len(items),
		TotalPages: 1,
	}
}

// decodeItem applies the data-or-body rule before decoding a single record.
func decodeItem[T any](body json.RawMessage) (*T, error) {
	var item T
	if err := json.Unmarshal(dataOr(body), &item); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &item, nil
}

// decodeSlice applies the data-or-body rule and decodes an array.
func decodeSlice[T any](body json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(dataOr(body), &items); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
