package contract

import (
	"context"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/repository/specification"
)

type AdvisoryRecordRepository interface {
	Create(ctx context.Context, record *entity.AdvisoryRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AdvisoryRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
