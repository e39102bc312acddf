package main

import (
	"context"
	"io"
	"sort"
	"sync"
)

type MockBucketClient struct {
	Objects        map[string][]byte
	PutRequests    []MockRequest
	GetRequests    []MockRequest
	ExistsRequests []MockRequest
	// PutErrors fails every put of a key, PutFailures fails the next n.
	PutErrors    map[string]error
	PutFailures  map[string]int
	GetErrors    map[string]error
	ExistsErrors map[string]error
	lock         *sync.Mutex
}

type MockRequest struct {
	Bucket  string
	Key     string
	Options PutOptions
}

func NewMockClient(mocked map[string][]byte) *MockBucketClient {
	if mocked == nil {
		mocked = make(map[string][]byte)
	}
	return &MockBucketClient{
		Objects:      mocked,
		PutErrors:    make(map[string]error),
		PutFailures:  make(map[string]int),
		GetErrors:    make(map[string]error),
		ExistsErrors: make(map[string]error),
		lock:         new(sync.Mutex),
	}
}

func (m *MockBucketClient) PutObject(ctx context.Context, bucketName, key string, body io.Reader, opts PutOptions) error {
	m.lock.Lock()
	m.PutRequests = append(m.PutRequests, MockRequest{Bucket: bucketName, Key: key, Options: opts})
	if err, ok := m.PutErrors[key]; ok {
		m.lock.Unlock()
		return err
	}
	if m.PutFailures[key] > 0 {
		m.PutFailures[key]--
		m.lock.Unlock()
		// consume part of the stream, as a dropped connection would
		io.CopyN(io.Discard, body, 16)
		return errMockTransient
	}
	m.lock.Unlock()

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.Objects[key] = data
	return nil
}

func (m *MockBucketClient) GetObject(ctx context.Context, bucketName, key string) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.GetRequests = append(m.GetRequests, MockRequest{Bucket: bucketName, Key: key})
	if err, ok := m.GetErrors[key]; ok {
		return nil, err
	}
	data, ok := m.Objects[key]
	if !ok {
		return nil, objectNotFound(bucketName, key)
	}
	return data, nil
}

func (m *MockBucketClient) ObjectExists(ctx context.Context, bucketName, key string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.ExistsRequests = append(m.ExistsRequests, MockRequest{Bucket: bucketName, Key: key})
	if err, ok := m.ExistsErrors[key]; ok {
		return false, err
	}
	_, ok := m.Objects[key]
	return ok, nil
}

func (m *MockBucketClient) PutKeys() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	keys := make([]string, 0, len(m.PutRequests))
	for _, req := range m.PutRequests {
		keys = append(keys, req.Key)
	}
	return keys
}

func (m *MockBucketClient) ObjectKeys() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for key := range m.Objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
