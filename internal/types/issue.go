package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity controls how a diagnostic code is reported by the lint layer.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) MarshalYAML() (interface{}, error) {
	return strings.ToLower(s.String()), nil
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(s.String()))
}

func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	case "off":
		*s = SeverityOff
	default:
		return fmt.Errorf("unknown severity: %q", raw)
	}
	return nil
}

// ConfigRule overrides the severity of one diagnostic code.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}

// Issue represents a diagnostic found in a pattern collection file.
type Issue struct {
	Code     Code
	Severity Severity
	Filename string
	Line     int    // 1-based line of the pattern in Filename
	Pattern  string // the pattern source as written on that line
	Start    int    // rune offset within Pattern
	End      int
	Message  string
}
