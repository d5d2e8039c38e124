package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	LogDecision(ctx context.Context, record Record) error
	QueryDecisions(ctx context.Context, from, to time.Time, subject, resource string) ([]Record, error)
}

type service struct {
	repo   Repository
	signer *Signer
}

// NewService wires an audit Service over repo. signer may be nil, in
// which case records are logged unsigned.
func NewService(repo Repository, signer *Signer) Service {
	return &service{repo: repo, signer: signer}
}

func (s *service) LogDecision(ctx context.Context, record Record) error {
	if record.DecisionID == uuid.Nil {
		record.DecisionID = uuid.New()
	}
	if s.signer != nil {
		sig, err := s.signer.Sign(record)
		if err != nil {
			return err
		}
		record.Signature = sig
	}
	return s.repo.LogDecision(ctx, record)
}

func (s *service) QueryDecisions(ctx context.Context, from, to time.Time, subject, resource string) ([]Record, error) {
	return s.repo.QueryDecisions(ctx, from, to, subject, resource)
}
