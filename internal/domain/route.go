package domain

import (
	"fmt"
	"strings"
)

// Operation is the geocoding direction requested by the caller.
type Operation int

const (
	OpUnknown Operation = iota
	OpGeocode
	OpReverseGeocode
)

func (o Operation) String() string {
	switch o {
	case OpGeocode:
		return "geocode"
	case OpReverseGeocode:
		return "reverse_geocode"
	}
	return "unknown"
}

// Provider identifies a geocoding data provider backing a place index.
type Provider string

const (
	ProviderHere Provider = "here"
	ProviderEsri Provider = "esri"
	ProviderGrab Provider = "grab"
)

// providers in suffix-match order. Grab is listed even in regions that do not
// support it: whether an index exists for it is an index-map concern, not a
// naming concern.
var providers = []Provider{ProviderHere, ProviderEsri, ProviderGrab}

// ClassifyOperation derives the operation from the external function name.
// Matching is case-insensitive on the name prefix.
func ClassifyOperation(functionName string) (Operation, error) {
	name := strings.ToLower(functionName)
	switch {
	case strings.HasPrefix(name, "geocode"):
		return OpGeocode, nil
	case strings.HasPrefix(name, "reverse"):
		return OpReverseGeocode, nil
	}
	return OpUnknown, fmt.Errorf("%w: %q", ErrUnrecognizedOperation, functionName)
}

// ResolveProvider derives the data provider from the external function name.
// Matching is case-insensitive on the name suffix.
func ResolveProvider(functionName string) (Provider, error) {
	name := strings.ToLower(functionName)
	for _, p := range providers {
		if strings.HasSuffix(name, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, functionName)
}
