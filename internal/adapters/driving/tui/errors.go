package tui

import "errors"

// ErrMissingRecommender is returned when the route recommender is not provided.
var ErrMissingRecommender = errors.New("tui: route recommender is required")
