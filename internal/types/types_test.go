package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseCode(t *testing.T) {
	t.Parallel()
	for _, c := range Codes {
		got, err := ParseCode(" " + c.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCode("nope")
	assert.Error(t, err)
	_, err = ParseCode("")
	assert.Error(t, err)
}

func TestCode_IsMatchTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code     Code
		expected bool
	}{
		{CodeInfinite, true},
		{CodeTimeout, true},
		{CodeGroupOpen, false},
		{CodeLookbehind, false},
		{CodeNone, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.code.IsMatchTime(), tt.code)
	}
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()
	d := Diagnostic{Code: CodeRangeRev, Start: 2, End: 3, Token: 4}
	assert.Equal(t, "rangerev[2:3]", d.String())
}

func TestSeverity_YAML(t *testing.T) {
	t.Parallel()
	var rules map[Code]ConfigRule
	data := `
timeout:
  severity: Error
groupopen:
  severity: off
lookbehind:
  severity: " info "
`
	require.NoError(t, yaml.Unmarshal([]byte(data), &rules))
	assert.Equal(t, SeverityError, rules[CodeTimeout].Severity)
	assert.Equal(t, SeverityOff, rules[CodeGroupOpen].Severity)
	assert.Equal(t, SeverityInfo, rules[CodeLookbehind].Severity)

	out, err := yaml.Marshal(ConfigRule{Severity: SeverityWarning})
	require.NoError(t, err)
	assert.Equal(t, "severity: warning\n", string(out))

	var bad ConfigRule
	assert.Error(t, yaml.Unmarshal([]byte("severity: loud"), &bad))
}

func TestSeverity_JSON(t *testing.T) {
	t.Parallel()
	out, err := json.Marshal(Issue{Code: CodeInfinite, Severity: SeverityWarning})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Code":"infinite"`)
	assert.Contains(t, string(out), `"Severity":"warning"`)
}
