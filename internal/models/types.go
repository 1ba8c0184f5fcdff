package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is a list of strings stored as a Postgres text[] column.
// On other dialects it is stored as text in the same array literal format.
type StringList []string

// Value encodes the list as a Postgres array literal.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(l).Value()
}

// Scan decodes a Postgres array literal.
func (l *StringList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = StringList(arr)
	return nil
}

// GormDBDataType picks the column type per dialect.
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// MarshalJSON renders a nil list as an empty array.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// GeoPoint is a longitude/latitude pair stored as two nullable columns and
// serialized as a GeoJSON point: {"type":"Point","coordinates":[lng,lat]}.
type GeoPoint struct {
	Longitude *float64 `gorm:"column:longitude"`
	Latitude  *float64 `gorm:"column:latitude"`
}

// NewGeoPoint builds a point from a [lng, lat] pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Longitude: &lng, Latitude: &lat}
}

// IsZero reports whether no coordinates are set.
func (p GeoPoint) IsZero() bool {
	return p.Longitude == nil || p.Latitude == nil
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// MarshalJSON renders the point in GeoJSON form, or null when unset.
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	if p.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(geoJSONPoint{Type: "Point", Coordinates: []float64{*p.Longitude, *p.Latitude}})
}

// UnmarshalJSON accepts the GeoJSON form or null.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = GeoPoint{}
		return nil
	}
	var g geoJSONPoint
	if err := json.Unmarshal(data, &g); err != nil {
		return err
	}
	if len(g.Coordinates) != 2 {
		return errors.New("coordinates must contain exactly two numbers")
	}
	*p = NewGeoPoint(g.Coordinates[0], g.Coordinates[1])
	return nil
}
