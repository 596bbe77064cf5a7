// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package build contains build information for the archcanvas module.
package build

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var version string

// Version of archcanvas, from version.txt.
var Version = strings.TrimSpace(version)
