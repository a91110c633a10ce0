package client

import (
	"encoding/json"
	"fmt"
)

// Page is one page of API results.
type Page struct {
	// Results holds the page's records in server order. Records are kept
	// as raw JSON objects; the API schema is not interpreted here.
	Results []map[string]any

	// Next is the absolute URL of the following page, or "" on the last
	// page.
	Next string

	// Count is the server-reported total size of the result set across
	// all pages, when present.
	Count int
}

// decodePage parses a response body into a Page. The body must be a JSON
// object with a results array; anything else returns ErrMalformedResponse.
func decodePage(body []byte) (*Page, error) {
	var envelope struct {
		Results json.RawMessage `json:"results"`
		Next    *string         `json:"next"`
		Count   int             `json:"count"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// A page without a results array is not a page. json.RawMessage keeps
	// an explicit null, so both absent and null are rejected here.
	if envelope.Results == nil || string(envelope.Results) == "null" {
		return nil, fmt.Errorf("%w: missing results array", ErrMalformedResponse)
	}

	var results []map[string]any
	if err := json.Unmarshal(envelope.Results, &results); err != nil {
		return nil, fmt.Errorf("%w: results is not an object array: %v", ErrMalformedResponse, err)
	}

	page := &Page{
		Results: results,
		Count:   envelope.Count,
	}
	if envelope.Next != nil {
		page.Next = *envelope.Next
	}

	return page, nil
}
