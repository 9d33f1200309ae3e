package classify

import "strings"

// WiFiNetwork holds the fields of a WIFI: configuration payload.
type WiFiNetwork struct {
	SSID     string
	Password string
	Security string
	Hidden   bool
}

// ParseWiFi parses a WIFI:S:<ssid>;T:<security>;P:<password>;H:<hidden>; payload.
// Unknown fields are ignored; missing fields keep their zero value except
// Security, which defaults to WPA as most generators do.
func ParseWiFi(data string) WiFiNetwork {
	network := WiFiNetwork{Security: "WPA"}

	body := strings.TrimPrefix(data, "WIFI:")
	body = strings.TrimSuffix(body, ";;")

	for _, field := range splitWiFiFields(body) {
		key, value, found := strings.Cut(field, ":")
		if !found {
			continue
		}
		value = unescapeWiFiValue(value)
		switch key {
		case "S":
			network.SSID = value
		case "T":
			network.Security = value
		case "P":
			network.Password = value
		case "H":
			network.Hidden = strings.EqualFold(value, "true")
		}
	}

	return network
}

// splitWiFiFields splits on ';' while honoring backslash escapes,
// so SSIDs and passwords containing ';' survive.
func splitWiFiFields(body string) []string {
	var fields []string
	var current strings.Builder
	escaped := false

	for _, r := range body {
		switch {
		case escaped:
			current.WriteRune('\\')
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		fields = append(fields, current.String())
	}
	return fields
}

func unescapeWiFiValue(value string) string {
	replacer := strings.NewReplacer(`\;`, ";", `\:`, ":", `\,`, ",", `\\`, `\`)
	return replacer.Replace(value)
}
