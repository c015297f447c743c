package service

import (
	"context"
	"testing"
	"time"

	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/internal/repository/specification"
	"kisan-advisory-be/internal/repository/unitofwork"
	"kisan-advisory-be/pkg/advisory/safety"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordRepo struct {
	records []*entity.AdvisoryRecord
	specs   []specification.Specification
}

func (r *fakeRecordRepo) Create(_ context.Context, rec *entity.AdvisoryRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRecordRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.AdvisoryRecord, error) {
	r.specs = specs
	return r.records, nil
}

func (r *fakeRecordRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.records)), nil
}

type fakeUnitOfWork struct {
	records *fakeRecordRepo
}

func (u fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u fakeUnitOfWork) Commit() error               { return nil }
func (u fakeUnitOfWork) Rollback() error             { return nil }

func (u fakeUnitOfWork) CorpusRepository() contract.CorpusRepository { return nil }

func (u fakeUnitOfWork) AdvisoryRecordRepository() contract.AdvisoryRecordRepository {
	return u.records
}

type fakeFactory struct {
	records *fakeRecordRepo
}

func (f fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return fakeUnitOfWork{records: f.records}
}

const testRules = `{"rules":[
	{"chemical_name":"Endosulfan","status":"banned"},
	{"chemical_name":"Mancozeb","status":"restricted","banned_crops":["Guava"],"restriction":"not approved on guava"}
]}`

func TestAdminService_GetCropSafety(t *testing.T) {
	table, err := safety.ParseRules([]byte(testRules))
	require.NoError(t, err)
	svc := NewAdminService(fakeFactory{records: &fakeRecordRepo{}}, table, logger.NewNopLogger())

	res, err := svc.GetCropSafety(context.Background(), " Guava ")
	require.NoError(t, err)
	assert.Equal(t, "Guava", res.Crop)
	require.Len(t, res.Chemicals, 2)
	assert.Equal(t, "Endosulfan", res.Chemicals[0].ChemicalName)
	assert.Equal(t, "Completely banned in India", res.Chemicals[0].Reason)
	assert.Equal(t, "Restricted: not approved on guava", res.Chemicals[1].Reason)
	assert.Contains(t, res.ComplianceInstruction, "Mancozeb")

	res, err = svc.GetCropSafety(context.Background(), "Wheat")
	require.NoError(t, err)
	require.Len(t, res.Chemicals, 1)
}

func TestAdminService_ListAdvisories(t *testing.T) {
	table, err := safety.ParseRules([]byte(testRules))
	require.NoError(t, err)
	repo := &fakeRecordRepo{records: []*entity.AdvisoryRecord{{
		RequestId: uuid.New(),
		UserId:    "u1",
		Crop:      "Guava",
		Outcome:   "answered",
		Removed:   []string{"Mancozeb"},
		Delivered: true,
		CreatedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}}}
	svc := NewAdminService(fakeFactory{records: repo}, table, logger.NewNopLogger())

	res, total, err := svc.ListAdvisories(context.Background(), dto.AdvisoryListRequest{
		Crop: "guava", Outcome: "answered", Since: "2026-04-01",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, res, 1)
	assert.Equal(t, "2026-05-01T09:00:00Z", res[0].CreatedAt)
	assert.Equal(t, []string{"Mancozeb"}, res[0].Removed)

	require.Len(t, repo.specs, 5)
	assert.Equal(t, specification.CreatedSince{Since: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}, repo.specs[2])
	assert.Equal(t, specification.Pagination{Limit: defaultAdvisoryLimit}, repo.specs[4])

	_, _, err = svc.ListAdvisories(context.Background(), dto.AdvisoryListRequest{Since: "yesterday"})
	require.Error(t, err)
}
