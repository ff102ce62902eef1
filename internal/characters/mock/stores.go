package mock

import (
	context "context"
	reflect "reflect"

	models "github.com/collectorsden/shelftrack/internal/database/models"
	gomock "go.uber.org/mock/gomock"
)

// MockCharacterStore is a mock of CharacterStore interface.
type MockCharacterStore struct {
	ctrl     *gomock.Controller
	recorder *MockCharacterStoreMockRecorder
	isgomock struct{}
}

// MockCharacterStoreMockRecorder is the mock recorder for MockCharacterStore.
type MockCharacterStoreMockRecorder struct {
	mock *MockCharacterStore
}

// NewMockCharacterStore creates a new mock instance.
func NewMockCharacterStore(ctrl *gomock.Controller) *MockCharacterStore {
	mock := &MockCharacterStore{ctrl: ctrl}
	mock.recorder = &MockCharacterStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCharacterStore) EXPECT() *MockCharacterStoreMockRecorder {
	return m.recorder
}

// GetOrCreate mocks base method.
func (m *MockCharacterStore) GetOrCreate(ctx context.Context, name string) (*models.Character, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetOrCreate", ctx, name)
	ret0, _ := ret[0].(*models.Character)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetOrCreate indicates an expected call of GetOrCreate.
func (mr *MockCharacterStoreMockRecorder) GetOrCreate(ctx, name any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetOrCreate", reflect.TypeOf((*MockCharacterStore)(nil).GetOrCreate), ctx, name)
}

// MockLinkStore is a mock of LinkStore interface.
type MockLinkStore struct {
	ctrl     *gomock.Controller
	recorder *MockLinkStoreMockRecorder
	isgomock struct{}
}

// MockLinkStoreMockRecorder is the mock recorder for MockLinkStore.
type MockLinkStoreMockRecorder struct {
	mock *MockLinkStore
}

// NewMockLinkStore creates a new mock instance.
func NewMockLinkStore(ctrl *gomock.Controller) *MockLinkStore {
	mock := &MockLinkStore{ctrl: ctrl}
	mock.recorder = &MockLinkStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLinkStore) EXPECT() *MockLinkStoreMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockLinkStore) Create(ctx context.Context, link *models.ItemCharacter) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, link)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockLinkStoreMockRecorder) Create(ctx, link any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockLinkStore)(nil).Create), ctx, link)
}

// DeleteByItem mocks base method.
func (m *MockLinkStore) DeleteByItem(ctx context.Context, itemID int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteByItem", ctx, itemID)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteByItem indicates an expected call of DeleteByItem.
func (mr *MockLinkStoreMockRecorder) DeleteByItem(ctx, itemID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteByItem", reflect.TypeOf((*MockLinkStore)(nil).DeleteByItem), ctx, itemID)
}
