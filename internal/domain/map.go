package domain

import "github.com/google/uuid"

// MapView is the center and zoom the map page opens with
type MapView struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

// ReportMarker is a report pin as consumed by procesarReportes
type ReportMarker struct {
	ID          uuid.UUID `json:"id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion"`
	EnAdopcion  bool      `json:"enAdopcion"`
	Tipo        uint      `json:"tipo"`
	TipoCodigo  string    `json:"tipoCodigo"`
	Situacion   string    `json:"situacion"`
	IDUsuario   uuid.UUID `json:"idUsuario"`
	Foto        string    `json:"foto"`
}

// PlaceMarker is a business or shelter pin
type PlaceMarker struct {
	ID          uuid.UUID `json:"id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion"`
	IDUsuario   uuid.UUID `json:"idUsuario"`
	Foto        string    `json:"foto,omitempty"`
}

// MapMarkersResponse is everything the map page draws
type MapMarkersResponse struct {
	Map          MapView        `json:"map"`
	Reports      []ReportMarker `json:"reports"`
	Locales      []PlaceMarker  `json:"locales"`
	Veterinarios []PlaceMarker  `json:"veterinarios"`
	Protectoras  []PlaceMarker  `json:"protectoras"`
}
