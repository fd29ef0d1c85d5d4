// Package prompts provides externalized prompt templates with override support.
package prompts

import "embed"

//go:embed idea/*.md appgen/*.md quality/*.md
var embeddedFS embed.FS
