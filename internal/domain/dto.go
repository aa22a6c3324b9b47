package domain

import (
	"time"

	"github.com/google/uuid"
)

// Date layouts used on the wire and in the agenda views
const (
	DateLayout        = "2006-01-02"
	MonthLayout       = "2006-01"
	DisplayDateLayout = "02/01/2006"
)

// PaginatedResponse wraps a page of list results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ============================================================================
// Accounts
// ============================================================================

type UserDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	PhotoURL  string      `json:"photoUrl,omitempty"`
	Kind      AccountKind `json:"kind"`
	CreatedAt string      `json:"createdAt"`
}

type PersonProfileDTO struct {
	FirstName string `json:"firstName"`
	LastNames string `json:"lastNames"`
	BirthDate string `json:"birthDate"`
}

// ProfileDTO is an account together with its kind-specific profile
type ProfileDTO struct {
	User     UserDTO           `json:"user"`
	Person   *PersonProfileDTO `json:"person,omitempty"`
	Business *BusinessDTO      `json:"business,omitempty"`
	Shelter  *ShelterDTO       `json:"shelter,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserDTO   `json:"user"`
}

// AccountFields are shared by the three registration forms
type AccountFields struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Phone           string `json:"phone" validate:"required,max=50"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms" validate:"required"`
	PhotoKey        string `json:"photoKey,omitempty" validate:"max=255"`
}

type RegisterPersonRequest struct {
	AccountFields
	Name      string `json:"name" validate:"required,max=200"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastNames string `json:"lastNames" validate:"required,max=200"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
}

type RegisterBusinessRequest struct {
	AccountFields
	Name           string `json:"name" validate:"required,max=200"`
	Description    string `json:"description" validate:"required"`
	Address        string `json:"address" validate:"required,max=500"`
	BusinessTypeID uint   `json:"businessTypeId" validate:"required"`
}

type RegisterShelterRequest struct {
	AccountFields
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Address     string `json:"address" validate:"required,max=500"`
}

// UpdateProfileRequest edits the authenticated account. Empty Password and
// PhotoKey keep the stored values. Profile fields apply to the matching kind only.
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=50"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	PhotoKey string `json:"photoKey,omitempty" validate:"max=255"`

	FirstName string `json:"firstName,omitempty" validate:"max=100"`
	LastNames string `json:"lastNames,omitempty" validate:"max=200"`
	BirthDate string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`

	BusinessName   string `json:"businessName,omitempty" validate:"max=200"`
	ShelterName    string `json:"shelterName,omitempty" validate:"max=200"`
	Description    string `json:"description,omitempty"`
	Address        string `json:"address,omitempty" validate:"max=500"`
	BusinessTypeID uint   `json:"businessTypeId,omitempty"`
}

// ============================================================================
// Catalogs
// ============================================================================

type CatalogDTO struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type CatalogRequest struct {
	Code string `json:"code" validate:"required,max=50"`
	Name string `json:"name" validate:"required,max=100"`
}

// ============================================================================
// Directory
// ============================================================================

type BusinessDTO struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"userId"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Address      string      `json:"address"`
	Latitude     *float64    `json:"latitude,omitempty"`
	Longitude    *float64    `json:"longitude,omitempty"`
	PhotoURL     string      `json:"photoUrl,omitempty"`
	BusinessType *CatalogDTO `json:"businessType,omitempty"`
	IsVeterinary bool        `json:"isVeterinary"`
	Rating       float64     `json:"rating"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
}

type ShelterDTO struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
}

// ============================================================================
// Reports
// ============================================================================

type AnimalDTO struct {
	ID          uuid.UUID   `json:"id"`
	Situation   *CatalogDTO `json:"situation,omitempty"`
	AnimalType  *CatalogDTO `json:"animalType,omitempty"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	PhotoURL    string      `json:"photoUrl"`
}

type ReportDTO struct {
	ID           uuid.UUID `json:"id"`
	Animal       AnimalDTO `json:"animal"`
	ReporterID   uuid.UUID `json:"reporterId"`
	ReporterName string    `json:"reporterName,omitempty"`
	Location     string    `json:"location"`
	ContactPhone string    `json:"contactPhone"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	InAdoption   bool      `json:"inAdoption"`
	CreatedAt    string    `json:"createdAt"`
}

// CreateReportRequest registers an animal. The location is composed as
// "street, number, city" and must resolve through the geocoder.
type CreateReportRequest struct {
	SituationID  uint   `json:"situationId" validate:"required"`
	AnimalTypeID uint   `json:"animalTypeId" validate:"required"`
	Street       string `json:"street" validate:"required,max=300"`
	Number       string `json:"number" validate:"required,max=20"`
	City         string `json:"city" validate:"required,max=150"`
	Description  string `json:"description" validate:"required"`
	PhotoKey     string `json:"photoKey" validate:"required,max=255"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	ContactPhone string `json:"contactPhone" validate:"required,max=50"`
}

// UpdateReportRequest edits a report. The address is replaced only when street,
// number and city are all given.
type UpdateReportRequest struct {
	SituationID  uint   `json:"situationId" validate:"required"`
	Description  string `json:"description" validate:"required"`
	ContactPhone string `json:"contactPhone" validate:"required,max=50"`
	Street       string `json:"street,omitempty" validate:"required_with=Number City,max=300"`
	Number       string `json:"number,omitempty" validate:"required_with=Street City,max=20"`
	City         string `json:"city,omitempty" validate:"required_with=Street Number,max=150"`
}

// ============================================================================
// Agenda
// ============================================================================

type AppointmentDTO struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	DisplayDate string    `json:"displayDate"`
	DisplayTime string    `json:"displayTime"`
	AnimalName  string    `json:"animalName"`
	Reason      string    `json:"reason"`
}

type AppointmentRequest struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,max=5"`
	AnimalName string `json:"animalName" validate:"required,max=200"`
	Reason     string `json:"reason" validate:"required"`
}

type HighlightedDatesResponse struct {
	Dates []string `json:"dates"`
}

// ============================================================================
// Photos
// ============================================================================

type PhotoUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
