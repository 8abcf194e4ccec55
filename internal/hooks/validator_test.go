package hooks

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigFile(t *testing.T) {
	claude := mustLookup(t, Claude).Schema
	cursor := mustLookup(t, Cursor).Schema

	tests := []struct {
		name    string
		schema  Schema
		content string
		wantErr string
	}{
		{name: "empty file", schema: claude, content: ""},
		{name: "empty object", schema: claude, content: `{}`},
		{name: "unrelated keys", schema: claude, content: `{"model": "opus", "hooks": {"PreToolUse": 3}}`},
		{name: "nested entry", schema: claude, content: `{"hooks": {"Stop": [{"hooks": [{"type": "command", "command": "x"}]}]}}`},
		{name: "flat entry", schema: cursor, content: `{"version": 1, "hooks": {"stop": [{"command": "x"}]}}`},
		{name: "malformed", schema: claude, content: `{"hooks":`, wantErr: "invalid JSON"},
		{name: "hooks not object", schema: claude, content: `{"hooks": []}`, wantErr: "unexpected layout: hooks"},
		{name: "trigger not array", schema: claude, content: `{"hooks": {"Stop": "x"}}`, wantErr: "unexpected layout: hooks.Stop"},
		{name: "entry not object", schema: cursor, content: `{"hooks": {"stop": ["x"]}}`, wantErr: "unexpected layout"},
		{name: "inner hooks not array", schema: claude, content: `{"hooks": {"Stop": [{"hooks": {}}]}}`, wantErr: "unexpected layout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			writeFile(t, path, tt.content)

			err := ValidateConfigFile(path, tt.schema)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfigFile_Missing(t *testing.T) {
	assert.NoError(t, ValidateConfigFile(filepath.Join(t.TempDir(), "nope.json"), mustLookup(t, Gemini).Schema))
}
