// internal/layout/layout.go
package layout

import (
	"fmt"
	"sort"

	"github.com/studiovx/outreach-backend/internal/model"
)

// Card geometry for the mind-map view. All coordinates produced by Layout
// are top-left corners of a card this size.
const (
	NodeWidth  = 320.0
	NodeHeight = 200.0
	HSpacing   = 50.0
	VSpacing   = 80.0
	TopMargin  = 50.0
)

// FallbackX and FallbackY are assigned to messages with no stored coordinate
// when at least one sibling in the batch does have one.
const (
	FallbackX = 100.0
	FallbackY = 100.0
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StructuralError reports a message tree that is not a forest: a cycle, a
// message that is its own parent, or a parent id that matches no message in
// the batch. The layout recursion cannot safely proceed past one of these.
type StructuralError struct {
	MessageID string
	Reason    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("corrupted script structure at message %s: %s", e.MessageID, e.Reason)
}

// Layout computes a top-down tree placement for the given messages and
// returns a position per message id.
//
// If any message carries a stored positive coordinate the whole batch is
// treated as already laid out and stored positions are returned as-is
// (missing ones get the fallback coordinate). Otherwise positions are
// computed: roots left to right along the top, children one row below their
// parent, every node horizontally centered within the span its subtree
// needs so sibling subtrees never overlap.
func Layout(messages []model.ScriptMessage) (map[string]Position, error) {
	positions := make(map[string]Position, len(messages))
	if len(messages) == 0 {
		return positions, nil
	}

	if hasStoredPositions(messages) {
		for _, m := range messages {
			if m.PositionX > 0 || m.PositionY > 0 {
				positions[m.ID] = Position{X: m.PositionX, Y: m.PositionY}
			} else {
				positions[m.ID] = Position{X: FallbackX, Y: FallbackY}
			}
		}
		return positions, nil
	}

	g, err := buildForest(messages)
	if err != nil {
		return nil, err
	}

	widths := make(map[string]float64, len(messages))
	for _, root := range g.roots {
		if _, err := g.subtreeWidth(root, widths, map[string]bool{}); err != nil {
			return nil, err
		}
	}

	var cursor float64
	for _, root := range g.roots {
		g.place(root, cursor, TopMargin, widths, positions)
		cursor += widths[root] + HSpacing
	}

	// A cycle is unreachable from any root (every member has a parent inside
	// the cycle), so it shows up as messages left without a position.
	if len(positions) != len(messages) {
		for _, m := range messages {
			if _, ok := positions[m.ID]; !ok {
				return nil, &StructuralError{MessageID: m.ID, Reason: "cycle in parent references"}
			}
		}
	}
	return positions, nil
}

func hasStoredPositions(messages []model.ScriptMessage) bool {
	for _, m := range messages {
		if m.PositionX > 0 || m.PositionY > 0 {
			return true
		}
	}
	return false
}

// forest is the per-call adjacency index. It is rebuilt on every Layout
// invocation; nothing survives between calls.
type forest struct {
	byID     map[string]*model.ScriptMessage
	children map[string][]string
	roots    []string
}

func buildForest(messages []model.ScriptMessage) (*forest, error) {
	g := &forest{
		byID:     make(map[string]*model.ScriptMessage, len(messages)),
		children: make(map[string][]string),
	}
	for i := range messages {
		g.byID[messages[i].ID] = &messages[i]
	}
	for i := range messages {
		m := &messages[i]
		if m.IsRoot() {
			g.roots = append(g.roots, m.ID)
			continue
		}
		parent := *m.ParentID
		if parent == m.ID {
			return nil, &StructuralError{MessageID: m.ID, Reason: "message is its own parent"}
		}
		if _, ok := g.byID[parent]; !ok {
			return nil, &StructuralError{MessageID: m.ID, Reason: "parent " + parent + " not in script"}
		}
		g.children[parent] = append(g.children[parent], m.ID)
	}

	g.sortSiblings(g.roots)
	for _, ids := range g.children {
		g.sortSiblings(ids)
	}
	return g, nil
}

// sortSiblings orders ids by Order ascending; the stable sort keeps
// insertion order for ties.
func (g *forest) sortSiblings(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return g.byID[ids[i]].Order < g.byID[ids[j]].Order
	})
}

// subtreeWidth returns the horizontal span the node and its descendants
// need. Results are memoized in widths for the duration of one Layout call.
// The visiting set guards against cycles that survived buildForest (e.g. two
// messages parenting each other).
func (g *forest) subtreeWidth(id string, widths map[string]float64, visiting map[string]bool) (float64, error) {
	if w, ok := widths[id]; ok {
		return w, nil
	}
	if visiting[id] {
		return 0, &StructuralError{MessageID: id, Reason: "cycle in parent references"}
	}
	visiting[id] = true
	defer delete(visiting, id)

	kids := g.children[id]
	if len(kids) == 0 {
		widths[id] = NodeWidth
		return NodeWidth, nil
	}

	var sum float64
	for i, kid := range kids {
		if i > 0 {
			sum += HSpacing
		}
		w, err := g.subtreeWidth(kid, widths, visiting)
		if err != nil {
			return 0, err
		}
		sum += w
	}
	if sum < NodeWidth {
		sum = NodeWidth
	}
	widths[id] = sum
	return sum, nil
}

// place assigns the node its top-left corner centered within [left,
// left+width) and recurses one row down for its children. buildForest and
// subtreeWidth have already rejected non-forest input, so the descent is
// finite here.
func (g *forest) place(id string, left, y float64, widths map[string]float64, positions map[string]Position) {
	width := widths[id]
	center := left + width/2
	positions[id] = Position{X: center - NodeWidth/2, Y: y}

	kids := g.children[id]
	if len(kids) == 0 {
		return
	}
	var kidSpan float64
	for i, kid := range kids {
		if i > 0 {
			kidSpan += HSpacing
		}
		kidSpan += widths[kid]
	}
	cursor := center - kidSpan/2
	for _, kid := range kids {
		g.place(kid, cursor, y+NodeHeight+VSpacing, widths, positions)
		cursor += widths[kid] + HSpacing
	}
}
