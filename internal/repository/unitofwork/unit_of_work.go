package unitofwork

import (
	"context"

	"kisan-advisory-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CorpusRepository() contract.CorpusRepository
	AdvisoryRecordRepository() contract.AdvisoryRecordRepository
}
