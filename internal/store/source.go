package store

import (
	"context"
	"time"

	"github.com/shuhei10/whquiz/internal/pool"
	"github.com/shuhei10/whquiz/internal/quiz"
)

// PoolSource returns a pool.Source reading the local question bank.
func (s *Store) PoolSource() pool.Source {
	return &bankSource{bank: s.Bank()}
}

type bankSource struct {
	bank *Bank
}

var _ pool.Source = (*bankSource)(nil)

func (s *bankSource) LoadPool(ctx context.Context, grade quiz.Grade) (*pool.Payload, error) {
	questions, err := s.bank.PoolForGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	themes, err := s.bank.ThemesForGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	return &pool.Payload{
		SavedAt:   time.Now().UTC(),
		Questions: pool.Sanitize(questions, grade),
		Themes:    themes,
		Origin:    pool.OriginBank,
	}, nil
}
