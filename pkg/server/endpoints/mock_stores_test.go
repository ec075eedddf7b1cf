package endpoints

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) CreateUser(ctx context.Context, u store.NewUser) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) GetUser(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUsersStore) UpdateUser(ctx context.Context, email string, u store.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, email, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) DeleteUser(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockDatabasesStore implements store.DatabasesStore for testing using testify/mock
type MockDatabasesStore struct {
	mock.Mock
}

func (m *MockDatabasesStore) CreateDatabase(ctx context.Context, ownerID int64, name, description string) (*model.Database, error) {
	args := m.Called(ctx, ownerID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Database), args.Error(1)
}

func (m *MockDatabasesStore) GetDatabase(ctx context.Context, id int64) (*model.Database, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Database), args.Error(1)
}

func (m *MockDatabasesStore) ListDatabases(ctx context.Context) ([]model.Database, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Database), args.Error(1)
}

func (m *MockDatabasesStore) ListDatabasesForUser(ctx context.Context, email string) ([]model.Database, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]model.Database), args.Error(1)
}

func (m *MockDatabasesStore) UpdateDatabase(ctx context.Context, id int64, u store.DatabaseUpdate) (*model.Database, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Database), args.Error(1)
}

func (m *MockDatabasesStore) DeleteDatabase(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMembershipStore implements store.MembershipStore and store.MembersStore
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

func (m *MockMembershipStore) ListMembers(ctx context.Context, databaseID int64) ([]model.Member, error) {
	args := m.Called(ctx, databaseID)
	return args.Get(0).([]model.Member), args.Error(1)
}

func (m *MockMembershipStore) AddMember(ctx context.Context, databaseID, userID int64, role string) error {
	args := m.Called(ctx, databaseID, userID, role)
	return args.Error(0)
}

func (m *MockMembershipStore) RemoveMember(ctx context.Context, databaseID, userID int64) error {
	args := m.Called(ctx, databaseID, userID)
	return args.Error(0)
}

// MockAppsStore implements store.AppsStore for testing using testify/mock
type MockAppsStore struct {
	mock.Mock
}

func (m *MockAppsStore) ListApps(ctx context.Context) ([]model.App, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.App), args.Error(1)
}

func (m *MockAppsStore) GetApp(ctx context.Context, id int64) (*model.App, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.App), args.Error(1)
}

func (m *MockAppsStore) CreateApp(ctx context.Context, name, description, version string) (*model.App, error) {
	args := m.Called(ctx, name, description, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.App), args.Error(1)
}

func (m *MockAppsStore) UpdateApp(ctx context.Context, id int64, u store.AppUpdate) (*model.App, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.App), args.Error(1)
}

func (m *MockAppsStore) DeleteApp(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInstallationsStore implements store.InstallationsStore for testing using testify/mock
type MockInstallationsStore struct {
	mock.Mock
}

func (m *MockInstallationsStore) ListInstallations(ctx context.Context, databaseID int64) ([]model.Installation, error) {
	args := m.Called(ctx, databaseID)
	return args.Get(0).([]model.Installation), args.Error(1)
}

func (m *MockInstallationsStore) Install(ctx context.Context, databaseID, appID int64, config json.RawMessage) (*model.DatabaseApp, error) {
	args := m.Called(ctx, databaseID, appID, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DatabaseApp), args.Error(1)
}

func (m *MockInstallationsStore) Uninstall(ctx context.Context, databaseID, appID int64) error {
	args := m.Called(ctx, databaseID, appID)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
