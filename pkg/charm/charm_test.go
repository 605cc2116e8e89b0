package charm

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/brimdata/thermo/pkg/terminal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rootCommand struct {
	verbose bool
}

func (*rootCommand) Run([]string) error { return ErrNoRun }

type echoCommand struct {
	*rootCommand
	upper bool
	got   *[]string
}

func (c *echoCommand) Run(args []string) error {
	if len(args) == 0 {
		return NeedHelp
	}
	if c.upper {
		for k := range args {
			args[k] = strings.ToUpper(args[k])
		}
	}
	if c.verbose {
		args = append(args, "!")
	}
	*c.got = args
	return nil
}

func newTree(got *[]string) *Spec {
	root := &Spec{
		Name:  "tool",
		Usage: "tool [options] command",
		Short: "test tool",
		New: func(_ Command, f *flag.FlagSet) (Command, error) {
			c := &rootCommand{}
			f.BoolVar(&c.verbose, "v", false, "verbose")
			return c, nil
		},
	}
	root.Add(&Spec{
		Name:  "echo",
		Usage: "echo [-upper] word...",
		Short: "print words",
		Long:  "Echo prints its arguments.",
		New: func(parent Command, f *flag.FlagSet) (Command, error) {
			c := &echoCommand{rootCommand: parent.(*rootCommand), got: got}
			f.BoolVar(&c.upper, "upper", false, "upper case")
			return c, nil
		},
	})
	root.Add(&Spec{
		Name:   "secret",
		Short:  "hidden command",
		Hidden: true,
		New: func(Command, *flag.FlagSet) (Command, error) {
			return &rootCommand{}, nil
		},
	})
	root.Add(Help)
	return root
}

func captureHelp(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	saved, savedColor := Output, color.Enabled
	Output, color.Enabled = &buf, false
	t.Cleanup(func() { Output, color.Enabled = saved, savedColor })
	return &buf
}

func TestExecRootFlagsAndSubcommand(t *testing.T) {
	var got []string
	require.NoError(t, newTree(&got).ExecRoot([]string{"-v", "echo", "-upper", "a", "b"}))
	assert.Equal(t, []string{"A", "B", "!"}, got)
}

func TestExecRootErrors(t *testing.T) {
	var got []string
	err := newTree(&got).ExecRoot(nil)
	assert.EqualError(t, err, `"tool": requires a sub-command: echo help`)

	err = newTree(&got).ExecRoot([]string{"bogus"})
	assert.EqualError(t, err, `"tool": no such sub-command "bogus": options are: echo help`)

	err = newTree(&got).ExecRoot([]string{"echo", "-nope"})
	assert.Error(t, err)
}

func TestNeedHelp(t *testing.T) {
	buf := captureHelp(t)
	var got []string
	require.NoError(t, newTree(&got).ExecRoot([]string{"echo"}))
	out := buf.String()
	assert.Contains(t, out, "NAME\n    echo - print words")
	assert.Contains(t, out, "-upper upper case")
	assert.Contains(t, out, "[tool flags]\n    -v verbose")
	assert.Contains(t, out, "DESCRIPTION\n    Echo prints its arguments.")
}

func TestHelpCommand(t *testing.T) {
	buf := captureHelp(t)
	var got []string
	require.NoError(t, newTree(&got).ExecRoot([]string{"help"}))
	assert.Contains(t, buf.String(), "COMMANDS\n    echo - print words\n    help - display help for a command")
	assert.NotContains(t, buf.String(), "secret")

	buf.Reset()
	require.NoError(t, newTree(&got).ExecRoot([]string{"help", "-v"}))
	assert.Contains(t, buf.String(), "[secret] - hidden command")

	err := newTree(&got).ExecRoot([]string{"help", "echo", "more"})
	assert.EqualError(t, err, "no such command: echo more")
}

func TestDashH(t *testing.T) {
	buf := captureHelp(t)
	var got []string
	require.NoError(t, newTree(&got).ExecRoot([]string{"echo", "-h"}))
	assert.Contains(t, buf.String(), "echo - print words")
	assert.Nil(t, got)
}
