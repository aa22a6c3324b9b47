package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel holds the columns shared by every uuid-keyed entity
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a new id when the caller left it empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// AccountKind tells which profile belongs to an account
type AccountKind string

const (
	AccountKindPerson   AccountKind = "person"
	AccountKindBusiness AccountKind = "business"
	AccountKindShelter  AccountKind = "shelter"
)

// User is the account base shared by people, businesses and shelters
type User struct {
	BaseModel
	Name         string      `gorm:"type:varchar(200);not null"`
	Email        string      `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string      `gorm:"type:varchar(255);not null;column:password_hash"`
	Phone        string      `gorm:"type:varchar(50);not null"`
	PhotoKey     string      `gorm:"type:varchar(255);column:photo_key"`
	Kind         AccountKind `gorm:"type:varchar(20);not null;index"`
}

func (User) TableName() string { return "users" }

// Person is the profile of a private account
type Person struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id"`
	User      *User     `gorm:"foreignKey:UserID"`
	FirstName string    `gorm:"type:varchar(100);not null;column:first_name"`
	LastNames string    `gorm:"type:varchar(200);not null;column:last_names"`
	BirthDate time.Time `gorm:"type:date;not null;column:birth_date"`
}

func (Person) TableName() string { return "persons" }

// Catalog codes
const (
	SituationLost     = "lost"
	SituationFound    = "found"
	SituationAdoption = "adoption"
	SituationResolved = "resolved"

	BusinessTypeVeterinary = "veterinary"
)

// Situation is the state of a reported animal
type Situation struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Situation) TableName() string { return "situations" }

// AnimalType is the species of a reported animal
type AnimalType struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (AnimalType) TableName() string { return "animal_types" }

// BusinessType classifies a business. Veterinarians are businesses of type "veterinary".
type BusinessType struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (BusinessType) TableName() string { return "business_types" }

// Business is the profile of a business account
type Business struct {
	BaseModel
	UserID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex;column:user_id"`
	User           *User         `gorm:"foreignKey:UserID"`
	Name           string        `gorm:"type:varchar(200);not null;index"`
	Description    string        `gorm:"type:text;not null"`
	Address        string        `gorm:"type:varchar(500);not null"`
	Latitude       *float64      `gorm:"column:latitude"`
	Longitude      *float64      `gorm:"column:longitude"`
	GeocodedAt     *time.Time    `gorm:"column:geocoded_at"`
	PhotoKey       string        `gorm:"type:varchar(255);column:photo_key"`
	BusinessTypeID uint          `gorm:"not null;index;column:business_type_id"`
	BusinessType   *BusinessType `gorm:"foreignKey:BusinessTypeID"`
	Rating         float64       `gorm:"not null;default:0"`
}

func (Business) TableName() string { return "businesses" }

// HasCoordinates reports whether the address was geocoded
func (b *Business) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// Shelter is the profile of an animal shelter account
type Shelter struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:user_id"`
	User        *User      `gorm:"foreignKey:UserID"`
	Name        string     `gorm:"type:varchar(200);not null;index"`
	Description string     `gorm:"type:text;not null"`
	Address     string     `gorm:"type:varchar(500);not null"`
	Latitude    *float64   `gorm:"column:latitude"`
	Longitude   *float64   `gorm:"column:longitude"`
	GeocodedAt  *time.Time `gorm:"column:geocoded_at"`
	PhotoKey    string     `gorm:"type:varchar(255);column:photo_key"`
}

func (Shelter) TableName() string { return "shelters" }

func (s *Shelter) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Animal is the animal described by a report
type Animal struct {
	BaseModel
	SituationID  uint        `gorm:"not null;index;column:situation_id"`
	Situation    *Situation  `gorm:"foreignKey:SituationID"`
	AnimalTypeID uint        `gorm:"not null;index;column:animal_type_id"`
	AnimalType   *AnimalType `gorm:"foreignKey:AnimalTypeID"`
	Description  string      `gorm:"type:text;not null"`
	Date         time.Time   `gorm:"type:date;not null"`
	PhotoKey     string      `gorm:"type:varchar(255);not null;column:photo_key"`
}

func (Animal) TableName() string { return "animals" }

// Report is a lost, found or in-adoption animal published by a user
type Report struct {
	BaseModel
	AnimalID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:animal_id"`
	Animal       *Animal    `gorm:"foreignKey:AnimalID;constraint:OnDelete:CASCADE"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id"`
	User         *User      `gorm:"foreignKey:UserID"`
	Location     string     `gorm:"type:varchar(500);not null"`
	ContactPhone string     `gorm:"type:varchar(50);not null;column:contact_phone"`
	Latitude     *float64   `gorm:"column:latitude"`
	Longitude    *float64   `gorm:"column:longitude"`
	GeocodedAt   *time.Time `gorm:"column:geocoded_at"`
}

func (Report) TableName() string { return "reports" }

func (r *Report) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Appointment is an entry in a user's veterinary agenda
type Appointment struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;column:user_id"`
	User       *User     `gorm:"foreignKey:UserID"`
	Date       time.Time `gorm:"type:date;not null;index"`
	Time       string    `gorm:"type:varchar(5);not null"`
	AnimalName string    `gorm:"type:varchar(200);not null;column:animal_name"`
	Reason     string    `gorm:"type:text;not null"`
}

func (Appointment) TableName() string { return "appointments" }
