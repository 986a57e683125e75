package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryClient is a thread-safe in-memory implementation of Client with
// the same single-record atomicity (and lack of cross-record atomicity)
// as the remote store. Used by tests and by the seed command's dry run.
//
// FailNext can be set to make the next write call fail, which is how the
// lending tests drive the partial-failure states.
type MemoryClient struct {
	mu     sync.Mutex
	data   map[string]map[int64]map[string]any
	nextID map[string]int64

	// FailNext, when non-nil, is returned by the next Create/Update/Delete
	// call and then cleared.
	FailNext error
}

// NewMemoryClient creates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		data:   make(map[string]map[int64]map[string]any),
		nextID: make(map[string]int64),
	}
}

// List implements Client. Records are returned in id order so list
// results are deterministic across calls.
func (m *MemoryClient) List(ctx context.Context, collection string, filters Filters) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.data[collection]))
	for id := range m.data[collection] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	records := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		record := m.data[collection][id]
		if !matches(record, filters) {
			continue
		}
		raw, err := codec.Marshal(record)
		if err != nil {
			return nil, err
		}
		records = append(records, raw)
	}
	return records, nil
}

// GetByID implements Client.
func (m *MemoryClient) GetByID(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return codec.Marshal(record)
}

// Create implements Client. IDs are assigned sequentially per collection.
func (m *MemoryClient) Create(ctx context.Context, collection string, fields any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	record, err := toRecord(fields)
	if err != nil {
		return nil, err
	}

	m.nextID[collection]++
	id := m.nextID[collection]
	record["id"] = id

	if m.data[collection] == nil {
		m.data[collection] = make(map[int64]map[string]any)
	}
	m.data[collection][id] = record
	return codec.Marshal(record)
}

// Update implements Client with merge semantics.
func (m *MemoryClient) Update(ctx context.Context, collection string, id int64, fields any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	record, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	patch, err := toRecord(fields)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		record[k] = v
	}
	return codec.Marshal(record)
}

// Delete implements Client.
func (m *MemoryClient) Delete(ctx context.Context, collection string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	if _, ok := m.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[collection], id)
	return nil
}

func (m *MemoryClient) takeFailure() error {
	if m.FailNext == nil {
		return nil
	}
	err := m.FailNext
	m.FailNext = nil
	return err
}

func toRecord(fields any) (map[string]any, error) {
	raw, err := codec.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := codec.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// matches applies conjunctive equality filters against the record's
// fields, comparing stringified values the way the REST store compares
// query parameters.
func matches(record map[string]any, filters Filters) bool {
	for key, want := range filters {
		value, ok := record[key]
		if !ok {
			return false
		}
		if stringify(value) != want {
			return false
		}
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		raw, err := codec.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
