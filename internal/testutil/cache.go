package testutil

import (
	"icut-go/internal/cache"
	"icut-go/internal/editor"
)

// NewTestStore creates an empty query cache.
func NewTestStore() *cache.Store {
	return cache.NewStore()
}

var _ editor.Cache = (*cache.Store)(nil)
