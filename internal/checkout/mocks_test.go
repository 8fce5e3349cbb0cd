package checkout

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/G77-BOT/aura-flow/internal/domain"
)

// MockProvider implements Provider for testing
type MockProvider struct {
	mu         sync.Mutex
	CreatedReq *domain.SessionRequest
	CreateResp *domain.CheckoutSession
	CreateErr  error
	Creates    int

	RetrieveResp  *domain.CheckoutSession
	RetrieveErr   error
	Retrieves     atomic.Int32
	RetrieveGate  chan struct{}
	RetrieveEnter chan struct{}
	// RetrieveCtxErr is the context error seen once the gate opened.
	RetrieveCtxErr error
}

func (m *MockProvider) CreateSession(_ context.Context, req *domain.SessionRequest) (*domain.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++
	m.CreatedReq = req
	return m.CreateResp, m.CreateErr
}

func (m *MockProvider) RetrieveSession(ctx context.Context, _ string) (*domain.CheckoutSession, error) {
	m.Retrieves.Add(1)
	if m.RetrieveEnter != nil {
		m.RetrieveEnter <- struct{}{}
	}
	if m.RetrieveGate != nil {
		<-m.RetrieveGate
	}
	m.mu.Lock()
	m.RetrieveCtxErr = ctx.Err()
	m.mu.Unlock()
	return m.RetrieveResp, m.RetrieveErr
}

// MockPublisher implements EventPublisher for testing
type MockPublisher struct {
	Published []*domain.CheckoutSession
	Err       error
}

func (m *MockPublisher) SessionCreated(_ context.Context, session *domain.CheckoutSession) error {
	m.Published = append(m.Published, session)
	return m.Err
}
