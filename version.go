package bramble

import _ "embed"

// Version is the library release version, embedded from the VERSION file.
// It includes the file's trailing newline; trim before display.
//
//go:embed VERSION
var Version string
