package main

import (
	"fmt"

	"oss.terrastruct.com/m2/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `Usage:
  %s [--watch=false] [--target=browser] input.json [output.svg]
  %[1]s [--target=browser] input.svg [output.svg]

%[1]s compiles the scene described by input.json and exports it to output.svg.
An SVG input is only run through the export pipeline and by default is written to
input.export.svg.
Use - to have %[1]s read from stdin or write to stdout.

Targets:
  browser      keeps non-scaling strokes for renderers that support them
  illustrator  bakes stroke widths and rescales typeset labels
  figma        bakes stroke widths

Flags:
%s

Subcommands:
  %[1]s version - Print the version
`, ms.Name, ms.Opts.Help())
}
