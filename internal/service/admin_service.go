package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/repository/specification"
	"kisan-advisory-be/internal/repository/unitofwork"
	"kisan-advisory-be/pkg/advisory/safety"
)

const defaultAdvisoryLimit = 50

type IAdminService interface {
	GetCropSafety(ctx context.Context, crop string) (*dto.CropSafetyResponse, error)
	ListAdvisories(ctx context.Context, req dto.AdvisoryListRequest) ([]*dto.AdvisoryRecordResponse, int64, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	table      *safety.Table
	logger     logger.ILogger
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, table *safety.Table, logger logger.ILogger) IAdminService {
	return &adminService{
		uowFactory: uowFactory,
		table:      table,
		logger:     logger,
	}
}

func (s *adminService) GetCropSafety(_ context.Context, crop string) (*dto.CropSafetyResponse, error) {
	crop = strings.TrimSpace(crop)
	rules := s.table.RulesFor(crop)

	res := &dto.CropSafetyResponse{
		Crop:                  crop,
		Chemicals:             make([]dto.BannedChemicalResponse, 0, len(rules)),
		ComplianceInstruction: s.table.ComplianceInstruction(crop),
	}
	for _, r := range rules {
		res.Chemicals = append(res.Chemicals, dto.BannedChemicalResponse{
			ChemicalName: r.ChemicalName,
			Status:       string(r.Status),
			Reason:       r.Reason(),
			Aliases:      r.Aliases,
		})
	}
	return res, nil
}

func (s *adminService) ListAdvisories(ctx context.Context, req dto.AdvisoryListRequest) ([]*dto.AdvisoryRecordResponse, int64, error) {
	var specs []specification.Specification
	if req.Crop != "" {
		specs = append(specs, specification.ByCrop{Crop: req.Crop})
	}
	if req.Outcome != "" {
		specs = append(specs, specification.ByOutcome{Outcome: req.Outcome})
	}
	if req.UserID != "" {
		specs = append(specs, specification.ByUserID{UserID: req.UserID})
	}
	if req.Since != "" {
		since, err := time.Parse("2006-01-02", req.Since)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid since date: %w", err)
		}
		specs = append(specs, specification.CreatedSince{Since: since})
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultAdvisoryLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.AdvisoryRecordRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	records, err := uow.AdvisoryRecordRepository().FindAll(ctx, append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)...)
	if err != nil {
		return nil, 0, err
	}

	res := make([]*dto.AdvisoryRecordResponse, 0, len(records))
	for _, r := range records {
		res = append(res, &dto.AdvisoryRecordResponse{
			RequestID: r.RequestId.String(),
			UserID:    r.UserId,
			Crop:      r.Crop,
			District:  r.District,
			Path:      r.Path,
			Outcome:   r.Outcome,
			Removed:   r.Removed,
			Delivered: r.Delivered,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}
	return res, total, nil
}
