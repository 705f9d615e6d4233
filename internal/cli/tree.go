package cli

import (
	"strings"

	"github.com/roach88/genealogy/internal/genealogy"
	"github.com/roach88/genealogy/internal/strain"
)

// RenderTree draws a lineage snapshot as an indented tree rooted at the
// stem. A strain with several parents is drawn in full under the first
// parent reached and as "<id> ^" under the others; its full parent list
// is shown in brackets.
//
//	S0
//	├── L
//	│   └── D [L R]
//	│       └── E
//	└── R
//	    └── D ^
func RenderTree(s genealogy.Snapshot[strain.ID]) []string {
	nodes := make(map[strain.ID]genealogy.NodeSnapshot[strain.ID], len(s.Nodes))
	for _, n := range s.Nodes {
		nodes[n.ID] = n
	}

	lines := []string{string(s.Stem)}
	drawn := map[strain.ID]bool{s.Stem: true}

	var walk func(id strain.ID, prefix string)
	walk = func(id strain.ID, prefix string) {
		children := nodes[id].Children
		for i, child := range children {
			branch, indent := "├── ", "│   "
			if i == len(children)-1 {
				branch, indent = "└── ", "    "
			}

			if drawn[child] {
				lines = append(lines, prefix+branch+string(child)+" ^")
				continue
			}
			drawn[child] = true

			label := string(child)
			if parents := nodes[child].Parents; len(parents) > 1 {
				label += " [" + strings.Join(strain.Strings(parents), " ") + "]"
			}
			lines = append(lines, prefix+branch+label)
			walk(child, prefix+indent)
		}
	}
	walk(s.Stem, "")

	return lines
}
