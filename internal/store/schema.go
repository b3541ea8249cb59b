package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const predictionEventsTable = "prediction_events"

// Columns of the prediction_events table.
const (
	colID        = "id"
	colUID       = "uid"
	colSequence  = "sequence"
	colTimestamp = "timestamp"
	colRowJSON   = "row_json"
	colLabel     = "label"
	colRisk      = "risk"
	colModelKind = "model_kind"
)

var (
	predictionEventsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colUID, Type: field.TypeString, Unique: true},
		{Name: colSequence, Type: field.TypeInt64, Unique: true},
		{Name: colTimestamp, Type: field.TypeString},
		{Name: colRowJSON, Type: field.TypeString},
		{Name: colLabel, Type: field.TypeInt},
		{Name: colRisk, Type: field.TypeString},
		{Name: colModelKind, Type: field.TypeString, Default: ""},
	}

	predictionEvents = &schema.Table{
		Name:       predictionEventsTable,
		Columns:    predictionEventsColumns,
		PrimaryKey: []*schema.Column{predictionEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "predictionevent_timestamp",
				Columns: []*schema.Column{predictionEventsColumns[3]},
			},
		},
	}

	tables = []*schema.Table{predictionEvents}
)

// migrate creates or updates the event tables. The sequence counter table
// is managed separately by newSequenceCounter.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
