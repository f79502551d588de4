package extractor

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Block is a byte range of a header that holds declarations worth parsing.
type Block struct {
	Start int
	End   int
	// Line is the 1-based line of Start.
	Line int
}

// BlockLocator narrows a header down to the blocks the declaration parser reads.
type BlockLocator interface {
	Locate(src []byte) ([]Block, error)
}

// NativeLocator hands the whole file to the declaration parser.
type NativeLocator struct{}

func (NativeLocator) Locate(src []byte) ([]Block, error) {
	return []Block{{Start: 0, End: len(src), Line: 1}}, nil
}

const blockQuery = `[
  (class_specifier body: (field_declaration_list)) @block
  (struct_specifier body: (field_declaration_list)) @block
  (namespace_definition) @block
]`

var (
	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
)

// TreeSitterLocator finds outermost class, struct and namespace definitions
// with the C++ tree-sitter grammar, together with their `///` doc comments.
type TreeSitterLocator struct{}

func (TreeSitterLocator) Locate(src []byte) ([]Block, error) {
	queryOnce.Do(func() {
		query, queryErr = sitter.NewQuery([]byte(blockQuery), cpp.GetLanguage())
	})
	if queryErr != nil {
		return nil, fmt.Errorf("failed to create query: %w", queryErr)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var found []Block
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			found = append(found, Block{
				Start: docStart(c.Node, src),
				End:   int(c.Node.EndByte()),
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].End > found[j].End
	})

	var blocks []Block
	for _, b := range found {
		if n := len(blocks); n > 0 && b.Start < blocks[n-1].End {
			continue
		}
		b.Line = bytes.Count(src[:b.Start], []byte("\n")) + 1
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// docStart extends a definition backwards over the `///` comments preceding it.
func docStart(n *sitter.Node, src []byte) int {
	anchor := n
	for p := anchor.Parent(); p != nil && p.Type() != "translation_unit" && p.StartByte() == anchor.StartByte(); p = p.Parent() {
		anchor = p
	}

	start := int(anchor.StartByte())
	for prev := anchor.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		if !strings.HasPrefix(prev.Content(src), "///") {
			break
		}
		start = int(prev.StartByte())
	}

	// start the block at the beginning of its line so indentation is kept
	for start > 0 && src[start-1] != '\n' && (src[start-1] == ' ' || src[start-1] == '\t') {
		start--
	}
	return start
}
