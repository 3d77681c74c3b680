package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryCollection struct {
	order []string
	docs  map[string]Document
}

// MemoryStore keeps documents in process. Values are stored as given, so
// timestamps stay native time.Time values.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts a document under a caller-chosen id. Used by tests and local bootstrapping.
func (s *MemoryStore) Seed(collection, id string, data map[string]any) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(collection, id, data)
}

func (s *MemoryStore) put(collection, id string, data map[string]any) Document {
	col := s.collection(collection)
	doc := Document{ID: id, Data: copyData(data), CreatedAt: s.now()}
	if _, exists := col.docs[id]; !exists {
		col.order = append(col.order, id)
	}
	col.docs[id] = doc
	return cloneDoc(doc)
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	col, ok := s.collections[name]
	if !ok {
		col = &memoryCollection{docs: make(map[string]Document)}
		s.collections[name] = col
	}
	return col
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collection]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc, ok := col.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) GetMany(_ context.Context, collection string, ids []string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0, len(ids))
	col, ok := s.collections[collection]
	if !ok {
		return out, nil
	}
	for _, id := range ids {
		if doc, ok := col.docs[id]; ok {
			out = append(out, cloneDoc(doc))
		}
	}
	return out, nil
}

func (s *MemoryStore) Find(_ context.Context, collection string, filters ...Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0)
	col, ok := s.collections[collection]
	if !ok {
		return out, nil
	}
	for _, id := range col.order {
		doc := col.docs[id]
		if matches(doc, filters) {
			out = append(out, cloneDoc(doc))
		}
	}
	return out, nil
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := doc.Data[f.Field]
		if !ok || v == nil {
			return false
		}
		if textOf(v) != textOf(f.Value) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Insert(_ context.Context, collection string, data map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(collection, uuid.NewString(), data), nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[collection]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc, ok := col.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	for k, v := range fields {
		doc.Data[k] = v
	}
	col.docs[id] = doc
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := col.docs[id]; !ok {
		return ErrNotFound
	}
	delete(col.docs, id)
	for i, existing := range col.order {
		if existing == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func cloneDoc(doc Document) Document {
	doc.Data = copyData(doc.Data)
	return doc
}
