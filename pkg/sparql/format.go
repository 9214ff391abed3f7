package sparql

import (
	"fmt"
	"strings"
)

// Format is the value of the endpoint's "format" form field.
type Format string

const (
	FormatJSON   Format = "application/json"
	FormatTurtle Format = "text/turtle"
	FormatRDFXML Format = "application/rdf+xml"
	FormatAuto   Format = "auto"
)

// ParseFormat accepts either the media type or a short alias
// (json, turtle/ttl, rdf/xml, auto).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", string(FormatJSON):
		return FormatJSON, nil
	case "turtle", "ttl", string(FormatTurtle):
		return FormatTurtle, nil
	case "rdf", "xml", string(FormatRDFXML):
		return FormatRDFXML, nil
	case "", "auto":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("unknown sparql format %q", s)
}

// Extension is the file extension used when a body in this format is stored.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatTurtle:
		return "ttl"
	case FormatRDFXML:
		return "rdf"
	default:
		return "txt"
	}
}

// ContentType is the media type sent along with a stored body.
func (f Format) ContentType() string {
	if f == FormatAuto || f == "" {
		return "text/plain"
	}
	return string(f)
}
