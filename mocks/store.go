// Package mocks provides testify mocks for the s3browser interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sagarc03/s3browser"
)

// MockStore is a mock implementation of the s3browser.Store interface.
type MockStore struct {
	mock.Mock
}

var _ s3browser.Store = (*MockStore)(nil)

// BucketExists provides a mock function with given fields: ctx, bucket
func (m *MockStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ret := m.Called(ctx, bucket)

	if rf, ok := ret.Get(0).(func(context.Context, string) (bool, error)); ok {
		return rf(ctx, bucket)
	}
	return ret.Bool(0), ret.Error(1)
}

// ListBuckets provides a mock function with given fields: ctx
func (m *MockStore) ListBuckets(ctx context.Context) ([]s3browser.BucketInfo, error) {
	ret := m.Called(ctx)

	var r0 []s3browser.BucketInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]s3browser.BucketInfo)
	}
	return r0, ret.Error(1)
}

// ListObjects provides a mock function with given fields: ctx, bucket, opts
func (m *MockStore) ListObjects(ctx context.Context, bucket string, opts s3browser.ListOptions) ([]s3browser.ObjectInfo, error) {
	ret := m.Called(ctx, bucket, opts)

	var r0 []s3browser.ObjectInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]s3browser.ObjectInfo)
	}
	return r0, ret.Error(1)
}

// GetObject provides a mock function with given fields: ctx, bucket, key
func (m *MockStore) GetObject(ctx context.Context, bucket, key string) (*s3browser.Object, error) {
	ret := m.Called(ctx, bucket, key)

	var r0 *s3browser.Object
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*s3browser.Object)
	}
	return r0, ret.Error(1)
}

// FPutObject provides a mock function with given fields: ctx, bucket, key, path
func (m *MockStore) FPutObject(ctx context.Context, bucket, key, path string) (s3browser.UploadInfo, error) {
	ret := m.Called(ctx, bucket, key, path)

	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) (s3browser.UploadInfo, error)); ok {
		return rf(ctx, bucket, key, path)
	}
	return ret.Get(0).(s3browser.UploadInfo), ret.Error(1)
}

// FGetObject provides a mock function with given fields: ctx, bucket, key, path
func (m *MockStore) FGetObject(ctx context.Context, bucket, key, path string) error {
	ret := m.Called(ctx, bucket, key, path)

	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) error); ok {
		return rf(ctx, bucket, key, path)
	}
	return ret.Error(0)
}

// StatObject provides a mock function with given fields: ctx, bucket, key
func (m *MockStore) StatObject(ctx context.Context, bucket, key string) (s3browser.ObjectInfo, error) {
	ret := m.Called(ctx, bucket, key)

	return ret.Get(0).(s3browser.ObjectInfo), ret.Error(1)
}

// RemoveObject provides a mock function with given fields: ctx, bucket, key
func (m *MockStore) RemoveObject(ctx context.Context, bucket, key string) error {
	ret := m.Called(ctx, bucket, key)

	return ret.Error(0)
}

// GetBucketPolicy provides a mock function with given fields: ctx, bucket
func (m *MockStore) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	ret := m.Called(ctx, bucket)

	return ret.String(0), ret.Error(1)
}

// MakeBucket provides a mock function with given fields: ctx, bucket, region
func (m *MockStore) MakeBucket(ctx context.Context, bucket, region string) error {
	ret := m.Called(ctx, bucket, region)

	return ret.Error(0)
}

// NewMockStore creates a new MockStore that asserts its expectations on cleanup.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
