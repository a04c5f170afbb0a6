package resource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/search"
)

// QueryEvents runs one search against the events index. Id-list searches
// larger than the chunk limit are split transparently; see QueryEventsByIDs.
func (c *Client) QueryEvents(ctx context.Context, params model.SearchParams) ([]*model.Event, error) {
	if len(params.IDs) > c.chunkSize {
		return c.queryEventsChunked(ctx, params)
	}

	resp := &struct {
		Items []*model.Event `json:"_items"`
	}{}
	if err := c.query(ctx, EndpointEvents, search.BuildEventsQuery(params), params.Page, params.MaxResults, resp); err != nil {
		return nil, err
	}

	return resp.Items, nil
}

// queryEventsChunked splits an oversized id list into chunk-sized
// sub-queries and concatenates the results in request order. Pagination
// does not apply; each chunk is fetched whole.
func (c *Client) queryEventsChunked(ctx context.Context, params model.SearchParams) ([]*model.Event, error) {
	ids := params.IDs

	var items []*model.Event
	for start := 0; start < len(ids); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(ids) {
			end = len(ids)
		}

		chunk := params
		chunk.IDs = ids[start:end]
		chunk.Page = 0
		chunk.MaxResults = len(chunk.IDs)

		fetched, err := c.QueryEvents(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("query events chunk %d: %w", start/c.chunkSize, err)
		}

		items = append(items, fetched...)
	}

	return items, nil
}

func (c *Client) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	event := &model.Event{}
	if err := c.do(ctx, http.MethodGet, EndpointEvents+"/"+id, nil, nil, "", event); err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}

	return event, nil
}

// SaveEvent creates the event when original is nil, otherwise patches it
// with the original's etag for server-side conflict detection.
func (c *Client) SaveEvent(ctx context.Context, original *model.Event, updates interface{}) (*model.Event, error) {
	event := &model.Event{}

	if original == nil {
		if err := c.do(ctx, http.MethodPost, EndpointEvents, nil, updates, "", event); err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}
		return event, nil
	}

	if err := c.do(ctx, http.MethodPatch, EndpointEvents+"/"+original.ID, nil, updates, original.Etag, event); err != nil {
		return nil, fmt.Errorf("save event %s: %w", original.ID, err)
	}

	return event, nil
}

func (c *Client) RemoveEvent(ctx context.Context, event *model.Event) error {
	if err := c.do(ctx, http.MethodDelete, EndpointEvents+"/"+event.ID, nil, nil, event.Etag, nil); err != nil {
		return fmt.Errorf("remove event %s: %w", event.ID, err)
	}

	return nil
}

// UpdateEvent calls a custom sub-resource endpoint (lock, spike, cancel,
// reschedule, ...) for the given event.
func (c *Client) UpdateEvent(ctx context.Context, endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
	event := &model.Event{}
	if err := c.do(ctx, http.MethodPatch, endpoint+"/"+original.ID, nil, payload, original.Etag, event); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", endpoint, original.ID, err)
	}

	return event, nil
}
