package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"skywatch/crewdeck/internal/constants"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// Change is one committed row change on a table
type Change struct {
	Table    constants.Table `json:"table"`
	Type     EventType       `json:"type"`
	New      map[string]any  `json:"new,omitempty"`
	Old      map[string]any  `json:"old,omitempty"`
	CommitAt time.Time       `json:"commit_timestamp"`
}

// NewChange flattens the row structs into column maps using their json tags
func NewChange(table constants.Table, typ EventType, newRow, oldRow any) (Change, error) {
	n, err := toColumns(newRow)
	if err != nil {
		return Change{}, err
	}
	o, err := toColumns(oldRow)
	if err != nil {
		return Change{}, err
	}
	return Change{Table: table, Type: typ, New: n, Old: o, CommitAt: time.Now().UTC()}, nil
}

func toColumns(row any) (map[string]any, error) {
	if row == nil {
		return nil, nil
	}
	b, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	var cols map[string]any
	if err := json.Unmarshal(b, &cols); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return cols, nil
}

func encodeChange(c Change) ([]byte, error) {
	return json.Marshal(c)
}

func decodeChange(b []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(b, &c); err != nil {
		return Change{}, fmt.Errorf("failed to decode change: %w", err)
	}
	if c.Table == "" || c.Type == "" {
		return Change{}, fmt.Errorf("change is missing table or type")
	}
	return c, nil
}
