package mapper

import (
	"encoding/json"

	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/model"

	"gorm.io/datatypes"
)

type AdvisoryRecordMapper struct{}

func NewAdvisoryRecordMapper() *AdvisoryRecordMapper {
	return &AdvisoryRecordMapper{}
}

func (m *AdvisoryRecordMapper) ToModel(e *entity.AdvisoryRecord) *model.AdvisoryRecord {
	if e == nil {
		return nil
	}
	return &model.AdvisoryRecord{
		Id:             e.Id,
		RequestId:      e.RequestId,
		UserId:         e.UserId,
		Crop:           e.Crop,
		District:       e.District,
		Category:       e.Category,
		Path:           e.Path,
		Outcome:        e.Outcome,
		Questions:      toJSON(e.Questions),
		Missing:        toJSON(e.Missing),
		SafetyWarnings: toJSON(e.SafetyWarnings),
		Removed:        toJSON(e.Removed),
		FinalResponse:  e.FinalResponse,
		SessionVersion: e.SessionVersion,
		Delivered:      e.Delivered,
		DurationMs:     e.DurationMs,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *AdvisoryRecordMapper) ToEntity(r *model.AdvisoryRecord) *entity.AdvisoryRecord {
	if r == nil {
		return nil
	}
	e := &entity.AdvisoryRecord{
		Id:             r.Id,
		RequestId:      r.RequestId,
		UserId:         r.UserId,
		Crop:           r.Crop,
		District:       r.District,
		Category:       r.Category,
		Path:           r.Path,
		Outcome:        r.Outcome,
		FinalResponse:  r.FinalResponse,
		SessionVersion: r.SessionVersion,
		Delivered:      r.Delivered,
		DurationMs:     r.DurationMs,
		CreatedAt:      r.CreatedAt,
	}
	fromJSON(r.Questions, &e.Questions)
	fromJSON(r.Missing, &e.Missing)
	fromJSON(r.SafetyWarnings, &e.SafetyWarnings)
	fromJSON(r.Removed, &e.Removed)
	return e
}

func (m *AdvisoryRecordMapper) ToEntities(models []*model.AdvisoryRecord) []*entity.AdvisoryRecord {
	entities := make([]*entity.AdvisoryRecord, len(models))
	for i, r := range models {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func toJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

// fromJSON leaves the target zero on malformed column data.
func fromJSON(raw datatypes.JSON, out interface{}) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, out)
}
