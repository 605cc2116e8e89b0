// Package queryflags holds the flags that describe a lookup: its mode,
// filter and outputs, and optionally a remote service to send it to.
package queryflags

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/query"
	"github.com/brimdata/thermo/querycache"
)

type Flags struct {
	Mode    string
	Filter  OptionalFloat
	Outputs List
	Remote  string
	Token   string
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.Mode, "mode", mode.SatByTemperature, fmt.Sprintf("query mode [%s]", strings.Join(mode.Names(), ",")))
	fs.Var(&f.Filter, "filter", "value of the mode's filter column (pressure in MPa for superheat)")
	fs.Var(&f.Outputs, "props", "comma-separated properties to return (default all of the mode's outputs)")
	fs.StringVar(&f.Remote, "remote", "", "URL of a thermo service to send queries to instead of using a local dataset")
	fs.StringVar(&f.Token, "auth.token", "", "bearer token for -remote")
}

func (f *Flags) Init() error {
	if _, err := mode.Lookup(f.Mode); err != nil {
		return err
	}
	if f.Token != "" && f.Remote == "" {
		return fmt.Errorf("-auth.token requires -remote")
	}
	return nil
}

// Request returns the request for key value v.
func (f *Flags) Request(v float64) query.Request {
	return query.Request{
		Mode:    f.Mode,
		Value:   v,
		Filter:  f.Filter.Ptr(),
		Outputs: f.Outputs,
	}
}

// Local returns a runner for ds.
func Local(ds *dataset.Dataset) querycache.Runner {
	return querycache.NewDirect(ds)
}

// OptionalFloat is a flag.Value for a number that may be left unset.
type OptionalFloat struct {
	v   float64
	set bool
}

func (o *OptionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	o.v, o.set = v, true
	return nil
}

func (o *OptionalFloat) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.FormatFloat(o.v, 'g', -1, 64)
}

func (o *OptionalFloat) Ptr() *float64 {
	if !o.set {
		return nil
	}
	v := o.v
	return &v
}

// List is a flag.Value for a comma-separated list.
type List []string

func (l *List) Set(s string) error {
	*l = nil
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

func (l List) String() string {
	return strings.Join(l, ",")
}
