package keystore

import (
	"context"
	"sync"
)

type MemKeyStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ KeyStore = (*MemKeyStore)(nil)

func NewMemKeyStore() *MemKeyStore {
	return &MemKeyStore{
		data: make(map[string][]byte),
	}
}

func memKey(dict, key string) string {
	return dict + "/" + key
}

func (s *MemKeyStore) Get(ctx context.Context, dict, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[memKey(dict, key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemKeyStore) Put(ctx context.Context, dict, key string, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(val))
	copy(v, val)
	s.data[memKey(dict, key)] = v
	return nil
}

// does not error if the key is absent
func (s *MemKeyStore) Delete(ctx context.Context, dict, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, memKey(dict, key))
	return nil
}
