package anchorlog

import (
	"context"
	"sync"
	"time"

	"credanchor/internal/domain"
)

// Memory keeps appended records in order, for tests and single-process dev.
type Memory struct {
	mu      sync.Mutex
	records []domain.AnchorRecord

	// FailAppends makes every append confirm with a non-success receipt,
	// exercising the anchor-gating path.
	FailAppends bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, record domain.AnchorRecord) (domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if m.FailAppends {
		return domain.Receipt{Status: domain.ReceiptStatusFailed, Log: "memory", Timestamp: now}, nil
	}
	m.records = append(m.records, record)
	return domain.Receipt{
		Status:    domain.ReceiptStatusSuccess,
		Log:       "memory",
		Sequence:  int64(len(m.records) - 1),
		Timestamp: now,
	}, nil
}

// Records returns a copy of everything appended so far. Test hook.
func (m *Memory) Records() []domain.AnchorRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AnchorRecord(nil), m.records...)
}
