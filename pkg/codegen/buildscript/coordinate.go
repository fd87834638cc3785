package buildscript

import (
	"fmt"
	"strings"
)

// Coordinate is a parsed group:artifact:version[:classifier] dependency
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
}

// ParseCoordinate splits a Gradle-style dependency notation
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
		}
	}

	c := Coordinate{
		GroupID:    parts[0],
		ArtifactID: parts[1],
		Version:    parts[2],
	}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}
