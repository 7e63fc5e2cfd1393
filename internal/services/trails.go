package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/gorm"
)

type TrailDetail struct {
	Trail models.Trail       `json:"trail"`
	Steps []models.TrailStep `json:"steps"`
}

// Trails lists all trails, newest first.
func (s *ProgressService) Trails() ([]models.Trail, error) {
	var trails []models.Trail
	if err := s.db.Order("created_at DESC").Find(&trails).Error; err != nil {
		return nil, fmt.Errorf("failed to list trails: %w", err)
	}
	return trails, nil
}

// Trail returns one trail with its ordered steps.
func (s *ProgressService) Trail(trailID uuid.UUID) (*TrailDetail, error) {
	var trail models.Trail
	if err := s.db.First(&trail, "id = ?", trailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrailNotFound
		}
		return nil, fmt.Errorf("failed to load trail: %w", err)
	}

	var steps []models.TrailStep
	if err := s.db.Where("trail_id = ?", trailID).
		Order("position ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("failed to load trail steps: %w", err)
	}

	return &TrailDetail{Trail: trail, Steps: steps}, nil
}
