package domain

import (
	"encoding/json"
	"strconv"
)

// AdminRegion is one level of the administrative-division hierarchy as the
// backend stores it: the ids of the levels above it plus a denormalized name.
type AdminRegion struct {
	ProvinceID     string `json:"provinceId,omitempty"`
	MunicipalityID string `json:"municipalityId,omitempty"`
	BaranggayID    string `json:"baranggayId,omitempty"`
	Name           string `json:"name"`
}

// Patient represents a clinic patient
type Patient struct {
	ID                         int64        `json:"id"`
	ControlNo                  string       `json:"controlNo"`
	ProfilePhoto               string       `json:"profilePhoto"`
	FirstName                  string       `json:"firstName"`
	MiddleName                 string       `json:"middleName"`
	LastName                   string       `json:"lastName"`
	BirthDate                  string       `json:"birthDate"`
	Email                      string       `json:"email"`
	ContactNo                  string       `json:"contactNo"`
	EmergencyContactFirstName  string       `json:"emergencyContactFirstName"`
	EmergencyContactMiddleName string       `json:"emergencyContactMiddleName"`
	EmergencyContactLastName   string       `json:"emergencyContactLastName"`
	EmergencyContactNo         string       `json:"emergencyContactNo"`
	Address1                   string       `json:"address1"`
	Address2                   string       `json:"address2"`
	StateOrProvince            *AdminRegion `json:"stateOrProvince"`
	CityOrTown                 *AdminRegion `json:"cityOrTown"`
	Baranggay                  *AdminRegion `json:"baranggay"`
	PostalOrZip                string       `json:"postalOrZip"`
}

// FullName joins the non-empty name parts
func (p Patient) FullName() string {
	return joinNames(p.FirstName, p.MiddleName, p.LastName)
}

// RoleRef is a role as embedded in a user record
type RoleRef struct {
	ID  int64  `json:"id"`
	Key string `json:"key"`
}

// User represents a system user of the console
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	ProfilePhoto string    `json:"profilePhoto"`
	Roles        []RoleRef `json:"roles"`
}

// FullName joins first and last name
func (u User) FullName() string {
	return joinNames(u.FirstName, u.LastName)
}

// Role represents a user role. UserCount is display only.
type Role struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
}

// Service represents a health service offered by the store
type Service struct {
	ID          int64       `json:"id"`
	Logo        string      `json:"logo"`
	Name        string      `json:"name"`
	Category    int         `json:"category"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
}

// DocumentType represents an accepted patient document kind
type DocumentType struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	FileTypes FlexIDs `json:"fileTypes"`
}

// Store holds the health-service details of the clinic
type Store struct {
	Name            string       `json:"name"`
	ContactNo       string       `json:"contactNo"`
	Email           string       `json:"email"`
	Logo            string       `json:"logo"`
	Address1        string       `json:"address1"`
	Address2        string       `json:"address2"`
	StateOrProvince *AdminRegion `json:"stateOrProvince"`
	CityOrTown      *AdminRegion `json:"cityOrTown"`
	Baranggay       *AdminRegion `json:"baranggay"`
	PostalOrZip     string       `json:"postalOrZip"`
}

// FlexIDs decodes a list of ids sent either as numbers or as strings.
type FlexIDs []string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexIDs) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(FlexIDs, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return err
		}
		out = append(out, n.String())
	}
	*f = out
	return nil
}

// FormatID renders an id the way it appears in URLs and form values
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func joinNames(parts ...string) string {
	name := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += p
	}
	return name
}
