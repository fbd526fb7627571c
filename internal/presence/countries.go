package presence

import "strings"

// Country name to ISO code map. Display-side flag lookup happens in the
// client; the service only needs the code for roster filtering.
var countryCodes = map[string]string{
	"United States":  "us",
	"Canada":         "ca",
	"United Kingdom": "gb",
	"Germany":        "de",
	"France":         "fr",
	"Japan":          "jp",
	"India":          "in",
	"Philippines":    "ph",
	"Brazil":         "br",
	"South Korea":    "kr",
}

// CountryCode maps a country name to its ISO code, "xx" when unknown.
func CountryCode(name string) string {
	if code, ok := countryCodes[strings.TrimSpace(name)]; ok {
		return code
	}
	return "xx"
}
