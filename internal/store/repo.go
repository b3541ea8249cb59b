package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// PredictionEventData captures one completed prediction.
type PredictionEventData struct {
	Row       []float64
	Label     int
	Risk      string
	ModelKind string
}

// PredictionRecord is a stored prediction event.
type PredictionRecord struct {
	ID        string
	Sequence  int64
	Timestamp time.Time
	Row       []float64
	Label     int
	Risk      string
	ModelKind string
}

// EventRepo provides append and query access to prediction events.
type EventRepo interface {
	// AppendPrediction records a prediction and returns its generated ID.
	AppendPrediction(ctx context.Context, data PredictionEventData) (string, error)

	// QueryPredictions returns predictions, newest first.
	QueryPredictions(ctx context.Context, opts QueryOpts) ([]PredictionRecord, error)
}
