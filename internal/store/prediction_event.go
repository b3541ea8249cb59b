package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// timestampLayout is fixed-width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// eventRepo implements EventRepo backed by SQLite and the global sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendPrediction(ctx context.Context, data PredictionEventData) (string, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	rowJSON, err := json.Marshal(data.Row)
	if err != nil {
		return "", fmt.Errorf("marshal row: %w", err)
	}

	id := uuid.New().String()
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(predictionEventsTable).
		Columns(colUID, colSequence, colTimestamp, colRowJSON, colLabel, colRisk, colModelKind).
		Values(id, seqNum, time.Now().UTC().Format(timestampLayout), string(rowJSON),
			data.Label, data.Risk, data.ModelKind).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return "", fmt.Errorf("save prediction event: %w", err)
	}
	return id, nil
}

func (r *eventRepo) QueryPredictions(ctx context.Context, opts QueryOpts) ([]PredictionRecord, error) {
	query, args := selectPredictions(opts).Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionRecord
	for rows.Next() {
		var (
			rec     PredictionRecord
			ts      string
			rowJSON string
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rowJSON, &rec.Label, &rec.Risk, &rec.ModelKind); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		var err error
		rec.Timestamp, err = time.Parse(timestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(rowJSON), &rec.Row); err != nil {
			return nil, fmt.Errorf("unmarshal row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// selectPredictions builds the filtered, newest-first event query.
func selectPredictions(opts QueryOpts) *entsql.Selector {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(colUID, colSequence, colTimestamp, colRowJSON, colLabel, colRisk, colModelKind).
		From(b.Table(predictionEventsTable)).
		OrderBy(entsql.Desc(colSequence))
	if opts.After > 0 {
		sel.Where(entsql.GT(colSequence, opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT(colSequence, opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(colTimestamp, opts.From.UTC().Format(timestampLayout)))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(colTimestamp, opts.To.UTC().Format(timestampLayout)))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}
