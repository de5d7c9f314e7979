package collab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	listing := []string{"[DIR] /docs", "[FILE] /a.txt", "[FILE] /docs/notes.md"}
	prompt := BuildPrompt("/home/me/Desktop", listing)

	assert.Contains(t, prompt, "/home/me/Desktop")
	assert.Contains(t, prompt, "[DIR] /docs\n[FILE] /a.txt\n[FILE] /docs/notes.md")
	assert.Contains(t, prompt, "MOVE \"<src>\" -> \"<dst>\"")
}

func TestWritePromptArtifact(t *testing.T) {
	planFile := filepath.Join(t.TempDir(), "plan.txt")
	path, err := WritePromptArtifact(planFile, "hello")
	require.NoError(t, err)

	assert.Equal(t, planFile+".prompt", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStripFences(t *testing.T) {
	plain := "MKDIR /docs\nMOVE /a.txt -> /docs/a.txt"

	assert.Equal(t, plain, stripFences(plain))
	assert.Equal(t, plain, stripFences("```\n"+plain+"\n```"))
	assert.Equal(t, plain, stripFences("```text\n"+plain+"\n```\n"))
}
