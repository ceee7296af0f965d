package service

import (
	"strings"
	"testing"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/testutil"
)

func setupProfileService() (*ProfileService, *testutil.MockCustomerRepository) {
	customerRepo := testutil.NewMockCustomerRepository()
	name := "Jane Borrower"
	customerRepo.AddCustomer(&domain.Customer{
		ID:     testCustomerID,
		Email:  "jane@example.com",
		Name:   &name,
		Status: "active",
	})
	return NewProfileService(customerRepo), customerRepo
}

func TestGetProfile_Success(t *testing.T) {
	profileService, _ := setupProfileService()

	customer, err := profileService.GetProfile(testCustomerID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if customer.Email != "jane@example.com" {
		t.Errorf("Expected email 'jane@example.com', got %s", customer.Email)
	}
}

func TestGetProfile_CustomerNotFound(t *testing.T) {
	profileService, _ := setupProfileService()

	_, err := profileService.GetProfile("nobody")
	if err != domain.ErrCustomerNotFound {
		t.Errorf("Expected ErrCustomerNotFound, got %v", err)
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	profileService, _ := setupProfileService()
	phone := " +1 555 0100 "

	customer, err := profileService.UpdateProfile(testCustomerID, "  Jane B.  ", &phone)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if *customer.Name != "Jane B." {
		t.Errorf("Expected trimmed name 'Jane B.', got '%s'", *customer.Name)
	}
	if customer.Phone == nil || *customer.Phone != "+1 555 0100" {
		t.Errorf("Expected trimmed phone, got %v", customer.Phone)
	}
}

func TestUpdateProfile_EmptyPhoneClears(t *testing.T) {
	profileService, _ := setupProfileService()
	empty := ""

	customer, err := profileService.UpdateProfile(testCustomerID, "Jane", &empty)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if customer.Phone != nil {
		t.Errorf("Expected phone cleared, got %s", *customer.Phone)
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	profileService, _ := setupProfileService()
	longPhone := strings.Repeat("1", domain.MaxPhoneLength+1)

	if _, err := profileService.UpdateProfile(testCustomerID, "   ", nil); err != domain.ErrNameRequired {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
	if _, err := profileService.UpdateProfile(testCustomerID, strings.Repeat("a", domain.MaxCustomerNameLength+1), nil); err != domain.ErrNameTooLong {
		t.Errorf("Expected ErrNameTooLong, got %v", err)
	}
	if _, err := profileService.UpdateProfile(testCustomerID, "Jane", &longPhone); err != domain.ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateProfile_CustomerNotFound(t *testing.T) {
	profileService, _ := setupProfileService()

	_, err := profileService.UpdateProfile("nobody", "Jane", nil)
	if err != domain.ErrCustomerNotFound {
		t.Errorf("Expected ErrCustomerNotFound, got %v", err)
	}
}
