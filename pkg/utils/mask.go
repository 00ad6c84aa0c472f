package utils

import (
	"net/url"
	"strings"
)

// MaskSheetURL hides most of the document key in a published Google Sheets
// URL so it can be printed in status output. Anyone holding the full key can
// read the sheet. Other URLs are returned unchanged.
//
//	https://docs.google.com/spreadsheets/d/e/2PACX-1vRkdOz6NFExg8W1QAs/pub?output=csv
//	→ https://docs.google.com/spreadsheets/d/e/2PAC…1QAs/pub?output=csv
func MaskSheetURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Host, "docs.google.com") {
		return raw
	}
	parts := strings.Split(u.Path, "/")
	for i, p := range parts {
		if i > 0 && (parts[i-1] == "d" || parts[i-1] == "e") && len(p) > 12 {
			parts[i] = MaskSecret(p)
		}
	}
	out := u.Scheme + "://" + u.Host + strings.Join(parts, "/")
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}

// MaskSecret keeps the first and last four characters of s.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "…" + s[len(s)-4:]
}
