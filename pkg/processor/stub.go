package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StubProcessor is an in-memory processor for development and tests. It
// replays CreateTransfer results by idempotency key, matching the retry
// contract of the real API.
type StubProcessor struct {
	mu          sync.Mutex
	byKey       map[string]*TransferResponse
	statuses    map[string]string
	onboarding  map[string]OnboardingStatus
	FailAccount string // CreateTransfer for this account returns an error
}

func NewStubProcessor() *StubProcessor {
	return &StubProcessor{
		byKey:      make(map[string]*TransferResponse),
		statuses:   make(map[string]string),
		onboarding: make(map[string]OnboardingStatus),
	}
}

func (s *StubProcessor) CreateTransfer(_ context.Context, req TransferRequest) (*TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.byKey[req.IdempotencyKey]; ok {
		cp := *prev
		return &cp, nil
	}
	if s.FailAccount != "" && req.DestinationAccountID == s.FailAccount {
		return nil, fmt.Errorf("stub: transfer declined for %s", req.DestinationAccountID)
	}
	resp := &TransferResponse{
		TransferID: "tr_" + uuid.New().String(),
		Status:     TransferStatusPending,
	}
	s.byKey[req.IdempotencyKey] = resp
	s.statuses[resp.TransferID] = TransferStatusPending
	cp := *resp
	return &cp, nil
}

func (s *StubProcessor) GetTransferStatus(_ context.Context, transferID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[transferID]
	if !ok {
		return "", fmt.Errorf("stub: unknown transfer %s", transferID)
	}
	return status, nil
}

func (s *StubProcessor) CheckOnboardingStatus(_ context.Context, accountID string) (*OnboardingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.onboarding[accountID]; ok {
		cp := st
		return &cp, nil
	}
	// Unknown accounts default to fully onboarded in dev.
	return &OnboardingStatus{ChargesEnabled: true, PayoutsEnabled: true}, nil
}

// SetOnboarding overrides the capability flags for an account.
func (s *StubProcessor) SetOnboarding(accountID string, st OnboardingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboarding[accountID] = st
}

// SetTransferStatus advances a stub transfer, mimicking processor settlement.
func (s *StubProcessor) SetTransferStatus(transferID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[transferID] = status
}

// TransferCount returns how many distinct transfers have been created.
func (s *StubProcessor) TransferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}
