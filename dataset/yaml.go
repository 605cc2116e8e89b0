package dataset

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// A yaml dataset is a single document:
//
//	sheets:
//	  B1.1-Satd.Water:
//	    columns: [T, P, ...]
//	    rows:
//	      - [0.01, 0.6113, ...]
type yamlDocument struct {
	Sheets map[string]yamlSheet `yaml:"sheets"`
}

type yamlSheet struct {
	Columns []string      `yaml:"columns"`
	Rows    [][]yaml.Node `yaml:"rows"`
}

type yamlSource struct {
	doc yamlDocument
}

func newYAMLSource(b []byte) (*yamlSource, error) {
	var src yamlSource
	if err := yaml.Unmarshal(b, &src.doc); err != nil {
		return nil, err
	}
	return &src, nil
}

func (y *yamlSource) sheet(_ context.Context, name string) (*grid, error) {
	s, ok := y.doc.Sheets[name]
	if !ok {
		return nil, ErrMissingSheet
	}
	g := &grid{header: s.Columns}
	for _, nodes := range s.Rows {
		row := make([]string, len(nodes))
		for i, n := range nodes {
			row[i] = yamlCell(&n)
		}
		g.rows = append(g.rows, row)
	}
	return g, nil
}

// yamlCell returns the text of a scalar.  Anything else is given a
// placeholder that will not parse as a number.
func yamlCell(n *yaml.Node) string {
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		return ""
	case n.Kind == yaml.ScalarNode:
		return n.Value
	case n.Kind == yaml.SequenceNode:
		return "[...]"
	case n.Kind == yaml.MappingNode:
		return "{...}"
	}
	return fmt.Sprintf("<yaml node at line %d>", n.Line)
}

func (*yamlSource) Close() error {
	return nil
}
