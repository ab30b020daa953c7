package domain

import (
	"encoding/json"
	"fmt"
)

// UserLocation is a geocoded place saved for a single user.
type UserLocation struct {
	UserID      string
	Latitude    string
	Longitude   string
	DisplayName string
}

// Complete reports whether every persisted field is populated.
func (l UserLocation) Complete() bool {
	return l.Latitude != "" && l.Longitude != "" && l.DisplayName != ""
}

// MarshalJSON encodes the location as a [lat, lon, name] tuple, the on-disk
// format of the location file. UserID is the map key and is not repeated.
func (l UserLocation) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{l.Latitude, l.Longitude, l.DisplayName})
}

// UnmarshalJSON decodes a [lat, lon, name] tuple.
func (l *UserLocation) UnmarshalJSON(data []byte) error {
	var tuple []string
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 3 {
		return fmt.Errorf("location tuple has %d fields, want 3", len(tuple))
	}
	l.Latitude, l.Longitude, l.DisplayName = tuple[0], tuple[1], tuple[2]
	return nil
}

// Place is the best match returned by a geocoding provider.
type Place struct {
	Latitude    string
	Longitude   string
	DisplayName string
}

// ForUser converts a place into a location owned by userID.
func (p Place) ForUser(userID string) UserLocation {
	return UserLocation{
		UserID:      userID,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		DisplayName: p.DisplayName,
	}
}
