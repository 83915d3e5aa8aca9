package geo

import (
	"context"
	"errors"
	"fmt"
	"math"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNoNeighborhoods = errors.New("no neighborhoods configured")
)

type PointStore interface {
	ListNeighborhoodPoints(ctx context.Context) ([]pgrepo.NeighborhoodPoint, error)
}

type Neighborhood struct {
	ID         int64
	NameHe     string
	NameRu     string
	DistanceKM float64
}

// Service resolves coordinates to the nearest neighborhood. The point set is
// small (dozens per city) so a linear scan per request is fine.
type Service struct {
	points PointStore
}

func NewService(points PointStore) *Service {
	return &Service{points: points}
}

func (s *Service) NearestNeighborhood(ctx context.Context, lat, lon float64) (Neighborhood, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return Neighborhood{}, err
	}
	if s.points == nil {
		return Neighborhood{}, fmt.Errorf("point store is nil")
	}

	points, err := s.points.ListNeighborhoodPoints(ctx)
	if err != nil {
		return Neighborhood{}, fmt.Errorf("load neighborhood points: %w", err)
	}
	if len(points) == 0 {
		return Neighborhood{}, ErrNoNeighborhoods
	}

	nearest := points[0]
	bestDistance := haversineKM(lat, lon, nearest.Lat, nearest.Lon)
	for _, point := range points[1:] {
		distance := haversineKM(lat, lon, point.Lat, point.Lon)
		if distance < bestDistance {
			bestDistance = distance
			nearest = point
		}
	}

	return Neighborhood{
		ID:         nearest.ID,
		NameHe:     nearest.NameHe,
		NameRu:     nearest.NameRu,
		DistanceKM: bestDistance,
	}, nil
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return fmt.Errorf("invalid coordinates: %w", ErrValidation)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("coordinates out of range: %w", ErrValidation)
	}
	return nil
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
