package registry

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/filter"
)

var farmerFields = filter.Fields[models.Farmer]{
	Text: func(f models.Farmer) []string {
		return []string{f.Name, f.CompanyName, f.FarmerCode, f.Contact, f.Address.Village, f.Address.District}
	},
	ID:     func(f models.Farmer) string { return f.ID },
	Status: func(f models.Farmer) string { return string(f.Status) },
	Active: func(f models.Farmer) bool { return f.Status == models.StatusActive },
}

// ListFarmers returns farmers matching q with their active batch counts.
func (s *Service) ListFarmers(ctx context.Context, q filter.Query) ([]models.Farmer, error) {
	all, err := s.repo.ListFarmers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	if err := s.countActiveBatches(ctx, all); err != nil {
		return nil, err
	}
	return filter.Apply(all, q, farmerFields), nil
}

// GetFarmer returns one farmer.
func (s *Service) GetFarmer(ctx context.Context, id string) (models.Farmer, error) {
	f, err := s.repo.GetFarmer(ctx, id)
	if err != nil {
		return models.Farmer{}, mapRepoError("farmer", id, err)
	}
	one := []models.Farmer{f}
	if err := s.countActiveBatches(ctx, one); err != nil {
		return models.Farmer{}, err
	}
	return one[0], nil
}

// CreateFarmer registers a farmer under the next code of its registration
// year. Shed capacities are computed from their dimensions.
func (s *Service) CreateFarmer(ctx context.Context, in models.Farmer) (models.Farmer, error) {
	f := in
	f.Name = strings.TrimSpace(f.Name)
	f.Contact = strings.TrimSpace(f.Contact)
	if f.Name == "" {
		return models.Farmer{}, fmt.Errorf("%w: farmer name is required", ErrInvalidInput)
	}
	if f.Contact == "" {
		return models.Farmer{}, fmt.Errorf("%w: contact number is required", ErrInvalidInput)
	}
	if f.RegistrationYear == 0 {
		f.RegistrationYear = s.now().Year()
	}
	if f.Status == "" {
		f.Status = models.StatusActive
	}
	f.ActiveBatches = 0

	sheds, err := s.prepareSheds(f.Sheds)
	if err != nil {
		return models.Farmer{}, err
	}
	f.Sheds = sheds
	f.Address = s.fillAddress(ctx, f.Address)

	s.codeMu.Lock()
	defer s.codeMu.Unlock()

	existing, err := s.repo.ListFarmers(ctx)
	if err != nil {
		return models.Farmer{}, fmt.Errorf("list farmers: %w", err)
	}
	codes := make([]string, 0, len(existing))
	for _, e := range existing {
		codes = append(codes, e.FarmerCode)
	}
	f.FarmerCode = models.NextCode(models.FarmerCodePrefix, f.RegistrationYear, codes)
	f.ID = f.FarmerCode

	if err := s.repo.CreateFarmer(ctx, f); err != nil {
		return models.Farmer{}, mapRepoError("farmer", f.ID, err)
	}
	s.logger.Info("farmer registered", zap.String("code", f.FarmerCode), zap.Int("sheds", len(f.Sheds)))
	return f, nil
}

// UpdateFarmer replaces the editable fields of a farmer. Code, id and
// registration year never change.
func (s *Service) UpdateFarmer(ctx context.Context, id string, in models.Farmer) (models.Farmer, error) {
	current, err := s.repo.GetFarmer(ctx, id)
	if err != nil {
		return models.Farmer{}, mapRepoError("farmer", id, err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.Farmer{}, fmt.Errorf("%w: farmer name is required", ErrInvalidInput)
	}

	sheds, err := s.prepareSheds(in.Sheds)
	if err != nil {
		return models.Farmer{}, err
	}

	updated := in
	updated.ID = current.ID
	updated.FarmerCode = current.FarmerCode
	updated.RegistrationYear = current.RegistrationYear
	updated.Name = strings.TrimSpace(in.Name)
	updated.Sheds = sheds
	updated.Address = s.fillAddress(ctx, in.Address)
	if updated.Status == "" {
		updated.Status = current.Status
	}

	if err := s.repo.UpdateFarmer(ctx, updated); err != nil {
		return models.Farmer{}, mapRepoError("farmer", id, err)
	}
	return s.GetFarmer(ctx, id)
}

// AddShed appends a shed to a farmer.
func (s *Service) AddShed(ctx context.Context, farmerID string, shed models.Shed) (models.Farmer, error) {
	f, err := s.repo.GetFarmer(ctx, farmerID)
	if err != nil {
		return models.Farmer{}, mapRepoError("farmer", farmerID, err)
	}
	sheds, err := s.prepareSheds(append(f.Sheds, shed))
	if err != nil {
		return models.Farmer{}, err
	}
	f.Sheds = sheds
	if err := s.repo.UpdateFarmer(ctx, f); err != nil {
		return models.Farmer{}, mapRepoError("farmer", farmerID, err)
	}
	return s.GetFarmer(ctx, farmerID)
}

// prepareSheds assigns ids and derives capacity from length and width.
// A client capacity is kept only when the dimensions are missing.
func (s *Service) prepareSheds(in []models.Shed) ([]models.Shed, error) {
	out := make([]models.Shed, 0, len(in))
	for i, shed := range in {
		if shed.Length < 0 || shed.Width < 0 || shed.Capacity < 0 {
			return nil, fmt.Errorf("%w: shed %d has negative dimensions", ErrInvalidInput, i+1)
		}
		if shed.ID == "" {
			shed.ID = s.newID()
		}
		if strings.TrimSpace(shed.Name) == "" {
			shed.Name = fmt.Sprintf("Shed %d", i+1)
		}
		if shed.Status == "" {
			shed.Status = models.StatusActive
		}
		if shed.Length > 0 && shed.Width > 0 {
			shed.Capacity = s.calc.ShedCapacity(shed.Length, shed.Width)
		}
		out = append(out, shed)
	}
	return out, nil
}

func (s *Service) countActiveBatches(ctx context.Context, farmers []models.Farmer) error {
	batches, err := s.listBatches(ctx)
	if err != nil {
		return err
	}
	if batches == nil {
		return nil
	}
	active := make(map[string]int)
	for _, b := range batches {
		if b.IsActive() {
			active[b.FarmerID]++
		}
	}
	for i := range farmers {
		farmers[i].ActiveBatches = active[farmers[i].ID]
	}
	return nil
}
