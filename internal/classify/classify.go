package classify

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ContentType is the semantic category assigned to a decoded QR payload.
type ContentType string

const (
	TypeURL     ContentType = "url"
	TypeWiFi    ContentType = "wifi"
	TypeVCard   ContentType = "vcard"
	TypeEmail   ContentType = "email"
	TypeSMS     ContentType = "sms"
	TypePhone   ContentType = "phone"
	TypeCrypto  ContentType = "crypto"
	TypeNumeric ContentType = "numeric"
	TypeText    ContentType = "text"
)

// longTextThreshold is the payload length above which fallback text
// is additionally tagged as long-text.
const longTextThreshold = 120

var (
	bareDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*\.[a-zA-Z]{2,}(/\S*)?$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[a-zA-Z]{2,}$`)
	phonePattern      = regexp.MustCompile(`^\+[0-9][0-9 ()./-]{5,}$`)
)

// rule pairs a type predicate with an optional tag builder.
// Rules are evaluated in order; the first match wins.
type rule struct {
	contentType ContentType
	matches     func(string) bool
	tags        func(string) []string
}

var rules = []rule{
	{TypeURL, isURL, urlTags},
	{TypeWiFi, isWiFi, wifiTags},
	{TypeVCard, isVCard, nil},
	{TypeEmail, isEmail, emailTags},
	{TypeSMS, isSMS, nil},
	{TypePhone, isPhone, nil},
	{TypeCrypto, isCrypto, nil},
	{TypeNumeric, isNumeric, nil},
}

// Classify assigns a semantic type and supplemental tags to a payload string.
// It never fails; an empty or unrecognized payload falls through to TypeText.
func Classify(data string) (ContentType, []string) {
	if data == "" {
		return TypeText, nil
	}

	for _, r := range rules {
		if r.matches(data) {
			var tags []string
			if r.tags != nil {
				tags = r.tags(data)
			}
			return r.contentType, tags
		}
	}

	var tags []string
	if len(data) > longTextThreshold {
		tags = []string{"long-text"}
	}
	return TypeText, tags
}

func isURL(data string) bool {
	lower := strings.ToLower(data)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return true
	}
	if strings.HasPrefix(lower, "www.") {
		return true
	}
	return bareDomainPattern.MatchString(data)
}

func urlTags(data string) []string {
	if domain := extractDomain(data); domain != "" {
		return []string{domain}
	}
	return nil
}

// extractDomain returns the lowercase host of a URL payload, without port.
func extractDomain(data string) string {
	raw := data
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func isWiFi(data string) bool {
	return strings.HasPrefix(data, "WIFI:")
}

func wifiTags(data string) []string {
	network := ParseWiFi(data)
	if network.Security == "" {
		return nil
	}
	return []string{strings.ToLower(network.Security)}
}

func isVCard(data string) bool {
	return strings.HasPrefix(data, "BEGIN:VCARD")
}

func isEmail(data string) bool {
	if strings.HasPrefix(strings.ToLower(data), "mailto:") {
		return true
	}
	return emailPattern.MatchString(data)
}

func emailTags(data string) []string {
	address := strings.TrimPrefix(strings.ToLower(data), "mailto:")
	if idx := strings.IndexByte(address, '?'); idx >= 0 {
		address = address[:idx]
	}
	if at := strings.LastIndexByte(address, '@'); at >= 0 && at < len(address)-1 {
		return []string{address[at+1:]}
	}
	return nil
}

func isSMS(data string) bool {
	lower := strings.ToLower(data)
	return strings.HasPrefix(lower, "smsto:") || strings.HasPrefix(lower, "sms:")
}

func isPhone(data string) bool {
	if strings.HasPrefix(strings.ToLower(data), "tel:") {
		return true
	}
	return phonePattern.MatchString(data)
}

func isCrypto(data string) bool {
	lower := strings.ToLower(data)
	return strings.HasPrefix(lower, "bitcoin:") || strings.HasPrefix(lower, "ethereum:")
}

func isNumeric(data string) bool {
	dots := 0
	for _, r := range data {
		if r == '.' {
			dots++
			if dots > 1 {
				return false
			}
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return data != "" && data != "."
}
