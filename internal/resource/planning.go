package resource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/search"
)

func (c *Client) QueryPlannings(ctx context.Context, params model.SearchParams) ([]*model.Planning, error) {
	if len(params.IDs) > c.chunkSize {
		return c.queryPlanningsChunked(ctx, params)
	}

	resp := &struct {
		Items []*model.Planning `json:"_items"`
	}{}
	if err := c.query(ctx, EndpointPlanning, search.BuildPlanningQuery(params), params.Page, params.MaxResults, resp); err != nil {
		return nil, err
	}

	return resp.Items, nil
}

func (c *Client) queryPlanningsChunked(ctx context.Context, params model.SearchParams) ([]*model.Planning, error) {
	ids := params.IDs

	var items []*model.Planning
	for start := 0; start < len(ids); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(ids) {
			end = len(ids)
		}

		chunk := params
		chunk.IDs = ids[start:end]
		chunk.Page = 0
		chunk.MaxResults = len(chunk.IDs)

		fetched, err := c.QueryPlannings(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("query planning chunk %d: %w", start/c.chunkSize, err)
		}

		items = append(items, fetched...)
	}

	return items, nil
}

func (c *Client) GetPlanningByID(ctx context.Context, id string) (*model.Planning, error) {
	planning := &model.Planning{}
	if err := c.do(ctx, http.MethodGet, EndpointPlanning+"/"+id, nil, nil, "", planning); err != nil {
		return nil, fmt.Errorf("get planning %s: %w", id, err)
	}

	return planning, nil
}

// UpdatePlanning calls a custom planning sub-resource endpoint.
func (c *Client) UpdatePlanning(ctx context.Context, endpoint string, original *model.Planning, payload interface{}) (*model.Planning, error) {
	planning := &model.Planning{}
	if err := c.do(ctx, http.MethodPatch, endpoint+"/"+original.ID, nil, payload, original.Etag, planning); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", endpoint, original.ID, err)
	}

	return planning, nil
}
