// Package mcp provides an MCP (Model Context Protocol) server adapter for Routy.
// It lets AI assistants request, refine and accept route recommendations.
package mcp

import "errors"

// ErrMissingRecommender is returned when the route recommender is not provided.
var ErrMissingRecommender = errors.New("mcp: route recommender is required")

// ErrRateLimited is returned as a tool error when calls arrive faster than allowed.
var ErrRateLimited = errors.New("mcp: rate limit exceeded, retry shortly")
