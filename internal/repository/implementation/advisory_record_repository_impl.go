package implementation

import (
	"context"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/mapper"
	"kisan-advisory-be/internal/model"
	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AdvisoryRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AdvisoryRecordMapper
}

func NewAdvisoryRecordRepository(db *gorm.DB) contract.AdvisoryRecordRepository {
	return &AdvisoryRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewAdvisoryRecordMapper(),
	}
}

func (r *AdvisoryRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AdvisoryRecordRepositoryImpl) Create(ctx context.Context, record *entity.AdvisoryRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *AdvisoryRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AdvisoryRecord, error) {
	var models []*model.AdvisoryRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AdvisoryRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.AdvisoryRecord{}).Count(&count).Error
	return count, err
}
