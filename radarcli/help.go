// Package radarcli implements the techradar command.
package radarcli

import (
	"fmt"
	"path/filepath"

	"oss.terrastruct.com/techradar/lib/version"
	"oss.terrastruct.com/techradar/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--watch=false] [--radius=500] file.(json|yaml|toml) [file.svg | file.json]
  %[1]s validate file.(json|yaml|toml)

%[1]s lays out and renders the technology radar described by the input file.
The output defaults to file.svg next to the input when no output path is given.
A .json output holds the laid out radar instead of the drawing.

Use - to have %[1]s read from stdin or write to stdout.
Input read from stdin is sniffed: JSON if it starts with {, YAML otherwise.

Flags:
%[3]s

Subcommands:
  %[1]s validate file.yaml - Checks the input and lists entries that reference unknown segments or rings
  %[1]s version - Prints the version
`, filepath.Base(ms.Name), version.Version, ms.Opts.Help())
}
