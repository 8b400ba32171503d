package entangled

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shakfu/entangled-rs/pkg/log"
)

func TestReadAnnotated_SimpleBlock(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "# ~/~ begin <<main[0]>>\nprint('hello')\n# ~/~ end\n"

	blocks := ReadAnnotated(ctx, input, "out.py")
	require.Len(t, blocks, 1)
	require.Equal(t, ReferenceID{Name: "main"}, blocks[0].ID)
	require.Equal(t, "print('hello')\n", blocks[0].Source)
	require.Equal(t, 1, blocks[0].StartLine)
	require.Equal(t, 3, blocks[0].EndLine)
}

func TestReadAnnotated_IndentStripped(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "    # ~/~ begin <<inner[0]>>\n    code\n    more code\n    # ~/~ end\n"

	blocks := ReadAnnotated(ctx, input, "out.py")
	require.Len(t, blocks, 1)
	require.Equal(t, "    ", blocks[0].Indent)
	require.Equal(t, "code\nmore code\n", blocks[0].Source)
}

func TestReadAnnotated_NestedBlocks(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "# ~/~ begin <<outer[0]>>\n" +
		"def main():\n" +
		"    # ~/~ begin <<inner[0]>>\n" +
		"    pass\n" +
		"    # ~/~ end\n" +
		"# ~/~ end\n"

	blocks := ReadAnnotated(ctx, input, "out.py")
	require.Len(t, blocks, 2)
	// Inner closes first.
	require.Equal(t, ReferenceName("inner"), blocks[0].ID.Name)
	require.Equal(t, "pass\n", blocks[0].Source)
	// The outer body holds only its own literal lines.
	require.Equal(t, ReferenceName("outer"), blocks[1].ID.Name)
	require.Equal(t, "def main():\n", blocks[1].Source)
}

func TestReadAnnotated_BlockCommentMarkers(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "/* ~/~ begin <<style[0]>> */\nbody { margin: 0 }\n/* ~/~ end */\n"

	blocks := ReadAnnotated(ctx, input, "out.css")
	require.Len(t, blocks, 1)
	require.Equal(t, ReferenceName("style"), blocks[0].ID.Name)
	require.Equal(t, "body { margin: 0 }\n", blocks[0].Source)
}

func TestReadAnnotated_UnmatchedEndWarns(t *testing.T) {
	ctx, th := testCtx(t)
	input := "code\n# ~/~ end\n"

	blocks := ReadAnnotated(ctx, input, "out.py")
	require.Empty(t, blocks)
	require.NotEmpty(t, log.FindEntries(th, func(e log.LoggedEntry) bool {
		return e.Msg == "unmatched end marker treated as content"
	}))
}

func TestReadAnnotated_UnclosedFrameDiscarded(t *testing.T) {
	ctx, th := testCtx(t)
	input := "# ~/~ begin <<main[0]>>\ncode\n"

	blocks := ReadAnnotated(ctx, input, "out.py")
	require.Empty(t, blocks)
	require.NotEmpty(t, log.FindEntries(th, func(e log.LoggedEntry) bool {
		return e.Msg == "unclosed block discarded"
	}))
}

func TestReadAnnotated_NoMarkers(t *testing.T) {
	ctx, _ := testCtx(t)
	blocks := ReadAnnotated(ctx, "plain\ncontent\n", "out.py")
	require.Empty(t, blocks)
}

func TestReadAnnotated_NamespacedReference(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "# ~/~ begin <<doc.md::main[0]>>\ncode\n# ~/~ end\n"

	blocks := ReadAnnotated(ctx, input, "out.py")
	require.Len(t, blocks, 1)
	require.Equal(t, ReferenceName("doc.md::main"), blocks[0].ID.Name)
}

func TestReadAnnotated_MismatchedIndentKeptVerbatim(t *testing.T) {
	ctx, th := testCtx(t)
	input := "    # ~/~ begin <<main[0]>>\nno indent here\n    # ~/~ end\n"

	blocks := ReadAnnotated(ctx, input, "out.py")
	require.Len(t, blocks, 1)
	require.Equal(t, "no indent here\n", blocks[0].Source)
	require.NotEmpty(t, log.FindEntries(th, func(e log.LoggedEntry) bool {
		return e.Msg == "line does not carry block indentation, kept verbatim"
	}))
}

func TestLocateLine_Table(t *testing.T) {
	input := "# ~/~ begin <<file:m.py[0]>>\n" + // 1
		"def f():\n" + // 2
		"    # ~/~ begin <<body[0]>>\n" + // 3
		"    x = 1\n" + // 4
		"    y = 2\n" + // 5
		"    # ~/~ end\n" + // 6
		"# ~/~ end\n" // 7

	cases := []struct {
		name       string
		line       int
		wantMarker bool
		wantBlock  string
		wantOffset int
		wantFound  bool
	}{
		{name: "begin marker", line: 1, wantMarker: true, wantBlock: "file:m.py[0]", wantFound: true},
		{name: "outer content", line: 2, wantBlock: "file:m.py[0]", wantOffset: 0, wantFound: true},
		{name: "inner begin", line: 3, wantMarker: true, wantBlock: "body[0]", wantFound: true},
		{name: "inner first line", line: 4, wantBlock: "body[0]", wantOffset: 0, wantFound: true},
		{name: "inner second line", line: 5, wantBlock: "body[0]", wantOffset: 1, wantFound: true},
		{name: "inner end", line: 6, wantMarker: true, wantBlock: "body[0]", wantFound: true},
		{name: "outer end", line: 7, wantMarker: true, wantBlock: "file:m.py[0]", wantFound: true},
		{name: "past eof", line: 42, wantFound: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, found := LocateLine(input, tc.line)
			require.Equal(t, tc.wantFound, found)
			if !found {
				return
			}
			require.Equal(t, tc.wantMarker, res.Marker)
			if tc.wantBlock != "" {
				require.True(t, res.HasBlock)
				require.Equal(t, tc.wantBlock, res.Block.String())
			}
			if !tc.wantMarker {
				require.Equal(t, tc.wantOffset, res.Offset)
			}
		})
	}
}
