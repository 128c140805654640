// internal/workers/location/reverse-geocode/models.go
package reversegeocode

import "strings"

// reverseResponse is the subset of a Nominatim jsonv2 /reverse answer we use.
type reverseResponse struct {
	DisplayName string          `json:"display_name"`
	Address     *addressDetails `json:"address"`
	Error       string          `json:"error"`
}

type addressDetails struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Village       string `json:"village"`
	Town          string `json:"town"`
	City          string `json:"city"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
}

// line renders a short single-line address: street, area, locality.
func (a *addressDetails) line() string {
	if a == nil {
		return ""
	}

	var parts []string
	street := strings.TrimSpace(strings.Join(nonEmpty(a.HouseNumber, a.Road), " "))
	if street != "" {
		parts = append(parts, street)
	}
	if area := first(a.Neighbourhood, a.Suburb); area != "" {
		parts = append(parts, area)
	}
	if locality := first(a.City, a.Town, a.Village); locality != "" {
		parts = append(parts, locality)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ")
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
