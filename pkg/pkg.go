//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time from
// the VERSION file.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It also names the configuration directory and
	// prefixes environment variables.
	Name = "lispy"
	// Description is a one-line summary used in help output.
	Description = "Minimal Scheme interpreter"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
