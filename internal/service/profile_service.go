package service

import (
	"strings"
	"unicode/utf8"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	customerRepo domain.CustomerRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(customerRepo domain.CustomerRepository) *ProfileService {
	return &ProfileService{customerRepo: customerRepo}
}

// GetProfile retrieves a customer's profile
func (s *ProfileService) GetProfile(customerID string) (*domain.Customer, error) {
	return s.customerRepo.GetByID(customerID)
}

// UpdateProfile updates a customer's display name and phone. An empty phone
// clears it.
func (s *ProfileService) UpdateProfile(customerID string, name string, phone *string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxCustomerNameLength {
		return nil, domain.ErrNameTooLong
	}

	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		if len(trimmed) > domain.MaxPhoneLength {
			return nil, domain.ErrInvalidInput
		}
		if trimmed == "" {
			phone = nil
		} else {
			phone = &trimmed
		}
	}

	customer, err := s.customerRepo.UpdateContact(customerID, name, phone)
	if err != nil {
		return nil, err
	}

	log.Info().Str("customer_id", customerID).Msg("Profile updated")
	return customer, nil
}
