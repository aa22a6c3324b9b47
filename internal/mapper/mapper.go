package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/petsafe/petsafe-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// PhotoURLs builds public URLs for stored photo keys
type PhotoURLs struct {
	BaseURL string
}

// URL returns the public URL of a photo, or "" when no photo is stored
func (p PhotoURLs) URL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(p.BaseURL, "/") + "/api/v1/photos/" + key
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User, photos PhotoURLs) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		PhotoURL:  photos.URL(user.PhotoKey),
		Kind:      user.Kind,
		CreatedAt: user.CreatedAt.UTC().Format(timestampLayout),
	}
}

// ToPersonProfileDTO converts Person to PersonProfileDTO
func ToPersonProfileDTO(person *domain.Person) *domain.PersonProfileDTO {
	return &domain.PersonProfileDTO{
		FirstName: person.FirstName,
		LastNames: person.LastNames,
		BirthDate: person.BirthDate.Format(domain.DateLayout),
	}
}

// ToSituationDTO converts Situation to CatalogDTO
func ToSituationDTO(s *domain.Situation) *domain.CatalogDTO {
	if s == nil {
		return nil
	}
	return &domain.CatalogDTO{ID: s.ID, Code: s.Code, Name: s.Name}
}

// ToAnimalTypeDTO converts AnimalType to CatalogDTO
func ToAnimalTypeDTO(a *domain.AnimalType) *domain.CatalogDTO {
	if a == nil {
		return nil
	}
	return &domain.CatalogDTO{ID: a.ID, Code: a.Code, Name: a.Name}
}

// ToBusinessTypeDTO converts BusinessType to CatalogDTO
func ToBusinessTypeDTO(b *domain.BusinessType) *domain.CatalogDTO {
	if b == nil {
		return nil
	}
	return &domain.CatalogDTO{ID: b.ID, Code: b.Code, Name: b.Name}
}

// ToBusinessDTO converts Business to BusinessDTO. Owner contact fields are
// filled when the User association is loaded.
func ToBusinessDTO(business *domain.Business, photos PhotoURLs) domain.BusinessDTO {
	dto := domain.BusinessDTO{
		ID:           business.ID,
		UserID:       business.UserID,
		Name:         business.Name,
		Description:  business.Description,
		Address:      business.Address,
		Latitude:     business.Latitude,
		Longitude:    business.Longitude,
		PhotoURL:     photos.URL(business.PhotoKey),
		BusinessType: ToBusinessTypeDTO(business.BusinessType),
		Rating:       business.Rating,
	}
	if business.BusinessType != nil {
		dto.IsVeterinary = business.BusinessType.Code == domain.BusinessTypeVeterinary
	}
	if business.User != nil {
		dto.Email = business.User.Email
		dto.Phone = business.User.Phone
	}
	return dto
}

// ToShelterDTO converts Shelter to ShelterDTO
func ToShelterDTO(shelter *domain.Shelter, photos PhotoURLs) domain.ShelterDTO {
	dto := domain.ShelterDTO{
		ID:          shelter.ID,
		UserID:      shelter.UserID,
		Name:        shelter.Name,
		Description: shelter.Description,
		Address:     shelter.Address,
		Latitude:    shelter.Latitude,
		Longitude:   shelter.Longitude,
		PhotoURL:    photos.URL(shelter.PhotoKey),
	}
	if shelter.User != nil {
		dto.Email = shelter.User.Email
		dto.Phone = shelter.User.Phone
	}
	return dto
}

// ToAnimalDTO converts Animal to AnimalDTO
func ToAnimalDTO(animal *domain.Animal, photos PhotoURLs) domain.AnimalDTO {
	return domain.AnimalDTO{
		ID:          animal.ID,
		Situation:   ToSituationDTO(animal.Situation),
		AnimalType:  ToAnimalTypeDTO(animal.AnimalType),
		Description: animal.Description,
		Date:        animal.Date.Format(domain.DateLayout),
		PhotoURL:    photos.URL(animal.PhotoKey),
	}
}

// ToReportDTO converts Report to ReportDTO
func ToReportDTO(report *domain.Report, photos PhotoURLs) domain.ReportDTO {
	dto := domain.ReportDTO{
		ID:           report.ID,
		ReporterID:   report.UserID,
		Location:     report.Location,
		ContactPhone: report.ContactPhone,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		CreatedAt:    report.CreatedAt.UTC().Format(timestampLayout),
	}
	if report.Animal != nil {
		dto.Animal = ToAnimalDTO(report.Animal, photos)
		if report.Animal.Situation != nil {
			dto.InAdoption = report.Animal.Situation.Code == domain.SituationAdoption
		}
	}
	if report.User != nil {
		dto.ReporterName = report.User.Name
	}
	return dto
}

// ToAppointmentDTO converts Appointment to AppointmentDTO with the agenda display strings
func ToAppointmentDTO(appointment *domain.Appointment) domain.AppointmentDTO {
	return domain.AppointmentDTO{
		ID:          appointment.ID,
		Date:        appointment.Date.Format(domain.DateLayout),
		Time:        appointment.Time,
		DisplayDate: appointment.Date.Format(domain.DisplayDateLayout),
		DisplayTime: appointment.Time,
		AnimalName:  appointment.AnimalName,
		Reason:      appointment.Reason,
	}
}

// ToReportMarker converts a geocoded report to its map marker
func ToReportMarker(report *domain.Report, photos PhotoURLs) domain.ReportMarker {
	marker := domain.ReportMarker{
		ID:        report.ID,
		Lat:       deref(report.Latitude),
		Lng:       deref(report.Longitude),
		IDUsuario: report.UserID,
	}
	if report.User != nil {
		marker.Nombre = report.User.Name
	}
	if animal := report.Animal; animal != nil {
		marker.Descripcion = animal.Description
		marker.Tipo = animal.AnimalTypeID
		marker.Foto = photos.URL(animal.PhotoKey)
		if animal.AnimalType != nil {
			marker.TipoCodigo = animal.AnimalType.Code
		}
		if animal.Situation != nil {
			marker.Situacion = animal.Situation.Code
			marker.EnAdopcion = animal.Situation.Code == domain.SituationAdoption
		}
	}
	return marker
}

// ToBusinessMarker converts a geocoded business to its map marker. The photo is the owner's.
func ToBusinessMarker(business *domain.Business, photos PhotoURLs) domain.PlaceMarker {
	marker := domain.PlaceMarker{
		ID:          business.ID,
		Lat:         deref(business.Latitude),
		Lng:         deref(business.Longitude),
		Nombre:      business.Name,
		Descripcion: business.Description,
		IDUsuario:   business.UserID,
	}
	if business.User != nil {
		marker.Foto = photos.URL(business.User.PhotoKey)
	}
	return marker
}

// ToShelterMarker converts a geocoded shelter to its map marker
func ToShelterMarker(shelter *domain.Shelter, photos PhotoURLs) domain.PlaceMarker {
	marker := domain.PlaceMarker{
		ID:          shelter.ID,
		Lat:         deref(shelter.Latitude),
		Lng:         deref(shelter.Longitude),
		Nombre:      shelter.Name,
		Descripcion: shelter.Description,
		IDUsuario:   shelter.UserID,
	}
	if shelter.User != nil {
		marker.Foto = photos.URL(shelter.User.PhotoKey)
	}
	return marker
}

// ComposeAddress joins the address parts entered on the report form
func ComposeAddress(street, number, city string) string {
	return fmt.Sprintf("%s, %s, %s", strings.TrimSpace(street), strings.TrimSpace(number), strings.TrimSpace(city))
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, value, time.UTC)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
