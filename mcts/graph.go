package mcts

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
)

type statefulNode struct {
	*Node
	Coord game.Coord
	board *gomoku.Board
}

func (s *statefulNode) State() string {
	var buf bytes.Buffer
	size := s.board.Size()
	for i, c := range s.board.Cells() {
		if i%size == 0 {
			fmt.Fprint(&buf, "⎢ ")
		}
		fmt.Fprintf(&buf, "%s ", c)
		if (i+1)%size == 0 {
			fmt.Fprint(&buf, "⎥<BR />")
		}
	}
	return buf.String()
}

// ToDot renders the visited part of the last search tree as a graphviz graph. Each node shows the position reached.
func (t *MCTS) ToDot() string {
	t.Lock()
	defer t.Unlock()

	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		panic(err)
	}
	g.SetDir(true)
	if !t.root.isValid() {
		return g.String()
	}

	states := make([]*statefulNode, len(t.nodes))
	states[t.root] = &statefulNode{Node: t.nodeFromNaughty(t.root), board: t.board.Clone()}

	var buf bytes.Buffer
	queue := []naughty{t.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := states[id]

		buf.Reset()
		if err := tmpl.Execute(&buf, n); err != nil {
			panic(err)
		}
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		}
		g.AddNode("G", fmt.Sprintf("%v", id), attrs)

		kids := make([]naughty, len(t.children[id]))
		copy(kids, t.children[id])
		sort.Sort(byMove{l: kids, t: t})
		for _, kid := range kids {
			child := t.nodeFromNaughty(kid)
			if child.IsNotVisited() {
				continue
			}
			s := &statefulNode{
				Node:  child,
				Coord: game.Itol(child.move, t.Size),
				board: n.board.Clone(),
			}
			// the tree only holds legal moves
			_ = s.board.Place(s.Coord, n.player)
			states[kid] = s
			queue = append(queue, kid)

			g.AddEdge(fmt.Sprintf("%v", id), fmt.Sprintf("%v", kid), true, nil)
		}
	}
	return g.String()
}

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Node ID</TD><TD>{{.ID}}</TD></TR>
<TR><TD>Move</TD><TD>{{.Coord}}</TD></TR>
<TR><TD>To Move</TD><TD>{{.Player}}</TD></TR>
<TR><TD>Visits</TD><TD>{{.Visits}}</TD></TR>
<TR><TD>Prior</TD><TD>{{.Prior}}</TD></TR>
<TR><TD>Value</TD><TD>{{.Value}}</TD></TR>
<TR><TD>State</TD><TD>{{.State}}</TD></TR>
</TABLE>
>
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("name").Parse(tmplRaw))
}
