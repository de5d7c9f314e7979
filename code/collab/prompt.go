// Package collab is the boundary to the external plan author (a human
// pasting into a chat, or the Claude API). Everything here is pure text
// serialization: DeskSweep never decides what the tree should look
// like, it only ships the listing out and takes a plan document back.
package collab

import (
	"fmt"
	"os"
	"strings"
)

const promptTemplate = `Below is a list of all files and directories under %s.
For each entry, only the kind and root-relative path are included.

Please produce a plan that reorganizes this directory to minimize the time
a human needs to find a file or directory. Keep these constraints:
- The level of nesting should not be larger than 2.
- Directory names should carry the most information possible while staying
  easy to read, and each should hold as many files as reasonably belong together.
- The number of top-level categories should be close to the number of nested
  categories in each top-level category.
- The number of leaf directories should be close to the number of files in
  each leaf directory.
- No wildcards; each line changes exactly one file or directory.

You can use the following commands, one per line (quote paths that contain
spaces):
- MKDIR "<dir>"
- MOVE "<src>" -> "<dst>"
- RENAME "<old>" "<new>"

Here is the list of files and directories:
%s

After completing, output only the contents of the plan file.
`

// BuildPrompt renders the plan-authoring prompt for a scanned root.
func BuildPrompt(rootPath string, listing []string) string {
	return fmt.Sprintf(promptTemplate, rootPath, strings.Join(listing, "\n"))
}

// WritePromptArtifact saves the prompt next to the eventual plan file as
// <planFile>.prompt and returns the path it wrote.
func WritePromptArtifact(planFile, prompt string) (string, error) {
	path := planFile + ".prompt"
	if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
