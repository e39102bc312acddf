package main

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// MockSNSClient records publish requests. PublishErr, when set, is returned
// after the request is recorded.
type MockSNSClient struct {
	PublishRequests []*sns.PublishInput
	PublishErr      error
	lock            sync.Mutex
}

func (c *MockSNSClient) PublishMessage(msg *sns.PublishInput) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.PublishRequests = append(c.PublishRequests, msg)
	return c.PublishErr
}

func NewMockSNSClient() *MockSNSClient {
	return &MockSNSClient{
		PublishRequests: make([]*sns.PublishInput, 0),
	}
}
