package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/cache"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/pkg/clients/pincode"
)

const pincodeTTL = 7 * 24 * time.Hour

// ResolvePincode returns the village, district and state for a pincode,
// consulting the cache before the lookup service.
func (s *Service) ResolvePincode(ctx context.Context, pin string) (models.Address, error) {
	pin = strings.TrimSpace(pin)
	if s.pincodes == nil {
		return models.Address{}, ErrLookupUnavailable
	}

	key := fmt.Sprintf(cache.PincodeKeyFmt, pin)
	var cached models.Address
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	office, err := s.pincodes.Lookup(ctx, pin)
	if err != nil {
		switch {
		case errors.Is(err, pincode.ErrInvalidPincode):
			return models.Address{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		case errors.Is(err, pincode.ErrNotFound):
			return models.Address{}, fmt.Errorf("%w: %s", ErrPincodeNotFound, pin)
		}
		return models.Address{}, fmt.Errorf("%w: lookup pincode %s: %v", ErrLookupUnavailable, pin, err)
	}

	addr := models.Address{
		Village:  office.Name,
		District: office.District,
		State:    office.State,
		Pincode:  pin,
	}
	s.cache.SetJSON(ctx, key, addr, pincodeTTL)
	return addr, nil
}

// fillAddress completes village, district and state from the pincode when
// they are blank. Lookup failures leave the address as entered.
func (s *Service) fillAddress(ctx context.Context, addr models.Address) models.Address {
	if addr.Pincode == "" || s.pincodes == nil {
		return addr
	}
	if addr.Village != "" && addr.District != "" && addr.State != "" {
		return addr
	}

	resolved, err := s.ResolvePincode(ctx, addr.Pincode)
	if err != nil {
		s.logger.Debug("pincode auto-fill skipped", zap.String("pincode", addr.Pincode), zap.Error(err))
		return addr
	}
	if addr.Village == "" {
		addr.Village = resolved.Village
	}
	if addr.District == "" {
		addr.District = resolved.District
	}
	if addr.State == "" {
		addr.State = resolved.State
	}
	return addr
}
