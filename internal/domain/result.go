package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TaskPublished is the status of a task whose mutation is visible to reads.
const TaskPublished = "published"

// Hit is a single record returned by a search or browse.
type Hit map[string]any

// ObjectID returns the record identifier.
func (h Hit) ObjectID() (string, bool) {
	id, ok := h[ObjectIDAttribute].(string)
	return id, ok && id != ""
}

// FacetCounts maps a facet value to the number of matching records.
type FacetCounts map[string]int

// SearchResult is the decoded subset of a search response consumed here.
type SearchResult struct {
	Hits                  []Hit                  `json:"hits"`
	NbHits                int                    `json:"nbHits"`
	Page                  int                    `json:"page"`
	NbPages               int                    `json:"nbPages"`
	HitsPerPage           int                    `json:"hitsPerPage"`
	ProcessingTimeMS      int                    `json:"processingTimeMS,omitempty"`
	Query                 string                 `json:"query"`
	Index                 string                 `json:"index,omitempty"`
	Facets                map[string]FacetCounts `json:"facets,omitempty"`
	ExhaustiveFacetsCount *bool                  `json:"exhaustiveFacetsCount,omitempty"`
}

// FacetsExhaustive reports whether facet counts cover the full matching set.
// An absent flag counts as exhaustive.
func (r SearchResult) FacetsExhaustive() bool {
	return r.ExhaustiveFacetsCount == nil || *r.ExhaustiveFacetsCount
}

// AggregatedResult is a search result merged with per-facet disjunctive counts.
type AggregatedResult struct {
	SearchResult
	DisjunctiveFacets map[string]FacetCounts `json:"disjunctiveFacets"`
}

// TaskStatus is the state of a server-side task.
type TaskStatus struct {
	Status      string `json:"status"`
	PendingTask bool   `json:"pendingTask"`
}

// Published reports whether the task is complete.
func (s TaskStatus) Published() bool { return s.Status == TaskPublished }

// BrowsePage is one page of a browse.
type BrowsePage struct {
	Hits   []Hit  `json:"hits"`
	Cursor string `json:"cursor,omitempty"`
}

// BatchResponse is the response to a batch write.
type BatchResponse struct {
	TaskID    int64    `json:"taskID"`
	ObjectIDs []string `json:"objectIDs,omitempty"`
}

// DecodeSearchResult decodes and validates a search response.
func DecodeSearchResult(op string, raw json.RawMessage) (SearchResult, error) {
	var res SearchResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return SearchResult{}, NewInvalidResponse(op, "", err)
	}
	if res.Hits == nil {
		return SearchResult{}, NewInvalidResponse(op, "hits", nil)
	}
	return res, nil
}

// DecodeTaskStatus decodes and validates a task status response.
func DecodeTaskStatus(op string, raw json.RawMessage) (TaskStatus, error) {
	var st struct {
		Status      *string `json:"status"`
		PendingTask bool    `json:"pendingTask"`
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return TaskStatus{}, NewInvalidResponse(op, "", err)
	}
	if st.Status == nil {
		return TaskStatus{}, NewInvalidResponse(op, "status", nil)
	}
	return TaskStatus{Status: *st.Status, PendingTask: st.PendingTask}, nil
}

// DecodeBrowsePage decodes and validates a browse response.
func DecodeBrowsePage(op string, raw json.RawMessage) (BrowsePage, error) {
	var page struct {
		Hits   []Hit   `json:"hits"`
		Cursor *string `json:"cursor"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return BrowsePage{}, NewInvalidResponse(op, "", err)
	}
	if page.Hits == nil {
		return BrowsePage{}, NewInvalidResponse(op, "hits", nil)
	}
	out := BrowsePage{Hits: page.Hits}
	if page.Cursor != nil {
		out.Cursor = *page.Cursor
	}
	return out, nil
}

// DecodeBatchResponse decodes and validates a batch write response.
func DecodeBatchResponse(op string, raw json.RawMessage) (BatchResponse, error) {
	var resp struct {
		TaskID    *int64   `json:"taskID"`
		ObjectIDs []string `json:"objectIDs"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return BatchResponse{}, NewInvalidResponse(op, "", err)
	}
	if resp.TaskID == nil {
		return BatchResponse{}, NewInvalidResponse(op, "taskID", nil)
	}
	return BatchResponse{TaskID: *resp.TaskID, ObjectIDs: resp.ObjectIDs}, nil
}

// DecodeResults splits a multi-query response into its raw per-query results.
func DecodeResults(op string, raw json.RawMessage) ([]json.RawMessage, error) {
	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, NewInvalidResponse(op, "", err)
	}
	if resp.Results == nil {
		return nil, NewInvalidResponse(op, "results", nil)
	}
	return resp.Results, nil
}

// ObjectIDs extracts identifiers from hits; a hit without one is an invalid response.
func ObjectIDs(op string, hits []Hit) ([]string, error) {
	ids := make([]string, 0, len(hits))
	for i, h := range hits {
		id, ok := h.ObjectID()
		if !ok {
			return nil, NewInvalidResponse(op, ObjectIDAttribute,
				fmt.Errorf("hit %d: %w", i, errors.New("missing identifier")))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
