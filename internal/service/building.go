package service

import (
	"context"
	"math"
	"regexp"

	"buildingportal/internal/models"
)

// DefaultParkingCapacity is the number of parking slots in the building.
const DefaultParkingCapacity = 60

const (
	elevatorNormal  = "Normal"
	elevatorWarning = "Warning"

	noteNormal  = "정상 운행"
	noteWarning = "점검 및 수리 중"
)

var elevatorRx = regexp.MustCompile(`(?i)엘리베이터|승강기|elevator|\blifts?\b`)

// warningUnit is the elevator entry flagged when an open complaint mentions elevators.
const warningUnit = 1

// BuildingStatus computes the aggregate view from live state. Nothing is cached.
func (s *Service) BuildingStatus(ctx context.Context) (models.BuildingStatus, error) {
	occupied, err := s.st.CountVehicles(ctx)
	if err != nil {
		return models.BuildingStatus{}, err
	}
	counts, err := s.st.CountComplaintsByStatus(ctx)
	if err != nil {
		return models.BuildingStatus{}, err
	}
	open, err := s.st.ListOpenComplaintTitles(ctx)
	if err != nil {
		return models.BuildingStatus{}, err
	}
	out := computeBuildingStatus(occupied, s.cfg.ParkingCapacity, counts, open)
	out.Maintenance.LastCheck = s.now().Format("2006-01-02")
	return out, nil
}

func computeBuildingStatus(occupied, capacity int, counts map[models.ComplaintStatus]int, openTitles []string) models.BuildingStatus {
	if capacity <= 0 {
		capacity = DefaultParkingCapacity
	}
	elevators := []models.ElevatorStatus{
		{ID: "1-4", Name: "엘리베이터 1-4호기", Status: elevatorNormal, Note: noteNormal},
		{ID: "5", Name: "엘리베이터 5호기", Status: elevatorNormal, Note: noteNormal},
	}
	for _, title := range openTitles {
		if elevatorRx.MatchString(title) {
			elevators[warningUnit].Status = elevatorWarning
			elevators[warningUnit].Note = noteWarning
			break
		}
	}

	pending := counts[models.ComplaintPending]
	processing := counts[models.ComplaintProcessing]
	return models.BuildingStatus{
		Parking: models.ParkingStatus{
			Occupied: occupied,
			Total:    capacity,
			Percent:  int(math.Round(float64(occupied) / float64(capacity) * 100)),
		},
		Elevators:                 elevators,
		Maintenance:               models.MaintenanceStatus{Status: "Optimal"},
		ActiveComplaintsCount:     pending + processing,
		PendingComplaintsCount:    pending,
		ProcessingComplaintsCount: processing,
		CompleteComplaintsCount:   counts[models.ComplaintComplete],
	}
}
