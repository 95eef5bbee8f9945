package audit

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// MockAuditManager is a mock implementation of the AuditManager interface.
type MockAuditManager struct {
	mock.Mock
}

var _ contract.AuditManager = &MockAuditManager{} // Compile-time check

func (m *MockAuditManager) GetAuditStore() contract.AuditStore {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(contract.AuditStore)
}

// MockAuditStore is a mock implementation of the AuditStore interface.
type MockAuditStore struct {
	mock.Mock
}

var _ contract.AuditStore = &MockAuditStore{} // Compile-time check

func (m *MockAuditStore) RecordEvent(event string, topicID, articleID *string, detail string) error {
	args := m.Called(event, topicID, articleID, detail)
	return args.Error(0)
}

func (m *MockAuditStore) BeginSweep(sweepID, topicID string, startedAt time.Time, configParams map[string]any) error {
	args := m.Called(sweepID, topicID, startedAt, configParams)
	return args.Error(0)
}

func (m *MockAuditStore) EndSweep(sweepID string, finishedAt time.Time, passes, checksRun, actionsApplied int, converged bool) error {
	args := m.Called(sweepID, finishedAt, passes, checksRun, actionsApplied, converged)
	return args.Error(0)
}

func (m *MockAuditStore) RecordSnapshot(sweepID, phase string, dist *schema.Distribution) error {
	args := m.Called(sweepID, phase, dist)
	return args.Error(0)
}

func (m *MockAuditStore) ListEvents(filter schema.EventFilter) ([]schema.AuditEventRecord, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.AuditEventRecord), args.Error(1)
}

func (m *MockAuditStore) GetAllEvents() ([]schema.AuditEventRecord, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.AuditEventRecord), args.Error(1)
}

func (m *MockAuditStore) GetAllSweepRuns() ([]schema.SweepRunRecord, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.SweepRunRecord), args.Error(1)
}

func (m *MockAuditStore) GetAllSnapshots() ([]schema.BucketSnapshotRecord, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.BucketSnapshotRecord), args.Error(1)
}

func (m *MockAuditStore) GetStatus() (schema.AuditStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AuditStatus), args.Error(1)
}

func (m *MockAuditStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
