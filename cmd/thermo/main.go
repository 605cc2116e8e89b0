package main

import (
	"fmt"
	"os"

	"github.com/brimdata/thermo/cli/clierrors"
	"github.com/brimdata/thermo/cmd/thermo/check"
	"github.com/brimdata/thermo/cmd/thermo/modes"
	"github.com/brimdata/thermo/cmd/thermo/pressures"
	"github.com/brimdata/thermo/cmd/thermo/query"
	"github.com/brimdata/thermo/cmd/thermo/repl"
	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/cmd/thermo/serve"
	"github.com/brimdata/thermo/cmd/thermo/sweep"
	"github.com/brimdata/thermo/cmd/thermo/token"
	"github.com/brimdata/thermo/pkg/charm"
)

func main() {
	thermo := root.Thermo
	thermo.Add(check.Cmd)
	thermo.Add(charm.Help)
	thermo.Add(modes.Cmd)
	thermo.Add(pressures.Cmd)
	thermo.Add(query.Cmd)
	thermo.Add(repl.Cmd)
	thermo.Add(serve.Cmd)
	thermo.Add(sweep.Cmd)
	thermo.Add(token.Cmd)
	if err := thermo.ExecRoot(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", clierrors.Format(err))
		os.Exit(1)
	}
}
