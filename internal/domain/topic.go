package domain

import "context"

// Topic is a single FAQ entry.
type Topic struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// TopicStore is the FAQ knowledge source.
type TopicStore interface {
	// ListAll returns every topic in stable order.
	ListAll(ctx context.Context) ([]Topic, error)

	// FindByQuery returns the first topic whose question matches the
	// query (case-insensitive substring, either direction), or nil when
	// nothing matches.
	FindByQuery(ctx context.Context, query string) (*Topic, error)
}
