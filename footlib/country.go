package footlib

import (
	"strings"

	"github.com/pariz/gountries"
)

var countryQuery = gountries.New()

// NormalizeAlpha2Code returns a normalized 2-letter ISO3166 code.
// Normalized code is uppercased with some additional mapping. For
// example, some databases return ZZ as 'unknown' country. This function
// returns "" instead. Some databases still map Serbia to YU. This
// correctly maps YU to CS.
func NormalizeAlpha2Code(alpha2 string) string {
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))

	if len(alpha2) != 2 {
		return ""
	}

	switch alpha2 {
	case "ZZ", "AP", "EU", "XX":
		return ""
	case "YU":
		return "CS"
	case "FX":
		return "FR"
	case "UK":
		return "GB"
	default:
		return alpha2
	}
}

// CountryName returns a common name of the country by its 2-letter
// ISO3166 code. If code is unknown, empty string is returned.
func CountryName(alpha2 string) string {
	alpha2 = NormalizeAlpha2Code(alpha2)
	if alpha2 == "" {
		return ""
	}

	country, err := countryQuery.FindCountryByAlpha(alpha2)
	if err != nil {
		return ""
	}

	return country.Name.Common
}
