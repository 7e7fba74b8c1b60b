package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the severity of a log event, ordered from least to most severe.
type Level int

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelVerbose:     "Verbose",
	LevelDebug:       "Debug",
	LevelInformation: "Information",
	LevelWarning:     "Warning",
	LevelError:       "Error",
	LevelFatal:       "Fatal",
}

// levelColors is the default message color for every level.
var levelColors = [...]string{
	LevelVerbose:     "gray",
	LevelDebug:       "gray",
	LevelInformation: "green",
	LevelWarning:     "yellow",
	LevelError:       "red",
	LevelFatal:       "red",
}

var levelAliases = map[string]Level{
	"trace":    LevelVerbose,
	"info":     LevelInformation,
	"warn":     LevelWarning,
	"err":      LevelError,
	"critical": LevelFatal,
}

// Valid reports whether l is one of the six known levels.
func (l Level) Valid() bool {
	return l >= LevelVerbose && l <= LevelFatal
}

// String returns the canonical level name, e.g. "Warning".
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Color returns the chat color used for the level when no override is configured.
func (l Level) Color() string {
	if !l.Valid() {
		return levelColors[LevelVerbose]
	}
	return levelColors[l]
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if strings.ToLower(n) == name {
			return Level(i), nil
		}
	}
	if l, ok := levelAliases[name]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// MarshalJSON encodes the level as its name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a level name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("level must be a string: %w", err)
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
