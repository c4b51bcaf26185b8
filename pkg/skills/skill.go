// Package skills models the Markdown documents that skillsync installs:
// skill documents under skills/ and the single command definition under
// commands/. Documents are copied verbatim; the parsed view here is only
// used for listing and reporting.
package skills

// Kind distinguishes skill documents from command definitions
type Kind string

// Document kinds
const (
	KindSkill   Kind = "skill"
	KindCommand Kind = "command"
)

const (
	// CommandsSubdir holds the command definition in both source and destination.
	CommandsSubdir = "commands"
	// SkillsSubdir holds skill documents in both source and destination.
	SkillsSubdir = "skills"
)

// Document is a parsed skill document or command definition
type Document struct {
	Name         string   `yaml:"name"`                  // File name stem, e.g. "base" for base.md
	File         string   `yaml:"file"`                  // File name, e.g. base.md
	Kind         Kind     `yaml:"kind"`                  // skill or command
	Title        string   `yaml:"title,omitempty"`       // First level-1 heading
	Description  string   `yaml:"description,omitempty"` // From frontmatter
	Dependencies []string `yaml:"dependencies,omitempty"`
	Path         string   `yaml:"path"`
	Body         string   `yaml:"-"` // Content after frontmatter
}

// Metadata represents the optional YAML frontmatter of a document
type Metadata struct {
	Description string   `mapstructure:"description"`
	Requires    []string `mapstructure:"requires"`
}
