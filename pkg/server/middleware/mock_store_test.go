package middleware

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// MockMembershipStore is a testify mock of store.MembershipStore
type MockMembershipStore struct {
	mock.Mock
}

func (m *MockMembershipStore) IsMember(ctx context.Context, userID, databaseID int64) (bool, error) {
	args := m.Called(ctx, userID, databaseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipStore) UserIDByEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

// memoryMembershipStore keeps membership rows in memory
type memoryMembershipStore struct {
	mu    sync.Mutex
	ids   map[string]int64
	pairs map[[2]int64]bool
}

func newMemoryMembershipStore() *memoryMembershipStore {
	return &memoryMembershipStore{ids: map[string]int64{}, pairs: map[[2]int64]bool{}}
}

func (s *memoryMembershipStore) addUser(email string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[email] = id
}

func (s *memoryMembershipStore) add(userID, databaseID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[[2]int64{userID, databaseID}] = true
}

func (s *memoryMembershipStore) remove(userID, databaseID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, [2]int64{userID, databaseID})
}

func (s *memoryMembershipStore) IsMember(_ context.Context, userID, databaseID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairs[[2]int64{userID, databaseID}], nil
}

func (s *memoryMembershipStore) UserIDByEmail(_ context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ids[email]
	if !ok {
		return 0, store.ErrNotFound
	}
	return id, nil
}
