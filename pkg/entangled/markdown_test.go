package entangled

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shakfu/entangled-rs/pkg/log"
)

func testCtx(t *testing.T) (context.Context, *log.TestHandler) {
	t.Helper()
	lg, th := log.NewTestLogger(t)
	return log.ContextWithLogger(context.Background(), lg), th
}

func TestParseMarkdown_SimpleBlock(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "# Title\n\n```python #main\nprint('hello')\n```\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)

	b := doc.Blocks[0]
	require.Equal(t, ReferenceName("main"), b.Name())
	require.Equal(t, "python", b.Language)
	require.Equal(t, "print('hello')\n", b.Source)
	require.Equal(t, 3, b.Origin.Line)
	require.Equal(t, 1, b.Origin.ContentLines)
}

func TestParseMarkdown_FileTargetNamesBlock(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "```python #hello file=hello.py\nprint(\"hi\")\n```\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)

	b := doc.Blocks[0]
	require.Equal(t, FileTargetName("hello.py"), b.Name())
	require.Equal(t, "hello.py", b.Target)
}

func TestParseMarkdown_ProseExampleSkipped(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "```python\nprint('anonymous')\n```\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, doc.Blocks)
}

func TestParseMarkdown_FrontMatter(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "---\ntitle: Test Document\n---\n\n```python #main\ncode\n```\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 3, doc.FrontMatterLines)
	require.Equal(t, "Test Document", doc.Meta["title"])
	require.Len(t, doc.Blocks, 1)
	// Origin lines are absolute in the file, front matter included.
	require.Equal(t, 5, doc.Blocks[0].Origin.Line)
}

func TestParseMarkdown_UnterminatedFrontMatter(t *testing.T) {
	ctx, _ := testCtx(t)
	_, err := ParseMarkdown(ctx, "---\ntitle: Test\n", "test.md", DefaultConfig())
	require.ErrorIs(t, err, ErrMarkdown)
}

func TestParseMarkdown_NestedFence(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "````markdown #example\n```python\ninner\n```\n````\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, "```python\ninner\n```\n", doc.Blocks[0].Source)
}

func TestParseMarkdown_TildeFence(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "~~~python #main\ncode\n~~~\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
}

func TestParseMarkdown_UnclosedFenceWarns(t *testing.T) {
	ctx, th := testCtx(t)
	input := "```python #main\ncode\nmore code\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, doc.Blocks)

	warned := log.FindEntries(th, func(e log.LoggedEntry) bool {
		return e.Msg == "unterminated code fence, block dropped"
	})
	require.NotEmpty(t, warned)
}

func TestParseMarkdown_IndentedFence(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "  ```python #main\n  code\n  ```\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, "code\n", doc.Blocks[0].Source)
}

func TestParseMarkdown_MultipleBlocksKeepOrder(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "```python #a\none\n```\n\n```python #b\ntwo\n```\n\n```python #a\nthree\n```\n"

	doc, err := ParseMarkdown(ctx, input, "test.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)
	require.Equal(t, ReferenceName("a"), doc.Blocks[0].Name())
	require.Equal(t, ReferenceName("b"), doc.Blocks[1].Name())
	require.Equal(t, ReferenceName("a"), doc.Blocks[2].Name())
}

func TestParseMarkdown_NamespaceFile(t *testing.T) {
	ctx, _ := testCtx(t)
	cfg := DefaultConfig()
	cfg.NamespaceDefault = NamespaceFile

	doc, err := ParseMarkdown(ctx, "```python #main\ncode\n```\n", "docs/test.md", cfg)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, ReferenceName("docs/test.md::main"), doc.Blocks[0].Name())
}

func TestParseMarkdown_QuartoDocument(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "```{python}\n#| label: main\n#| file: out.py\nprint('hello')\n```\n"

	doc, err := ParseMarkdown(ctx, input, "doc.qmd", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)

	b := doc.Blocks[0]
	require.Equal(t, FileTargetName("out.py"), b.Name())
	require.Equal(t, "python", b.Language)
	require.Equal(t, "print('hello')\n", b.Source)
	require.Equal(t, 3, b.Origin.ContentLines)
	require.Equal(t, 2, b.Origin.OptionLines)
}

func TestParseMarkdown_QuartoKeepOptions(t *testing.T) {
	ctx, _ := testCtx(t)
	cfg := DefaultConfig()
	cfg.StripQuartoOptions = false

	doc, err := ParseMarkdown(ctx, "```{python}\n#| label: main\ncode\n```\n", "doc.qmd", cfg)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Contains(t, doc.Blocks[0].Source, "#| label: main")
}

func TestParseMarkdown_KnitrDocument(t *testing.T) {
	ctx, _ := testCtx(t)
	input := "```{r, label=main, file=out.R}\nplot(x)\n```\n"

	doc, err := ParseMarkdown(ctx, input, "doc.Rmd", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, "r", doc.Blocks[0].Language)
	require.Equal(t, "out.R", doc.Blocks[0].Target)
}

func TestParseMarkdown_PandocStyle(t *testing.T) {
	ctx, _ := testCtx(t)
	cfg := DefaultConfig()
	cfg.Style = StylePandoc

	doc, err := ParseMarkdown(ctx, "``` {.python #main}\ncode\n```\n", "doc.md", cfg)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, "python", doc.Blocks[0].Language)
}

func TestParseMarkdown_InvalidPropertyIsFatal(t *testing.T) {
	ctx, _ := testCtx(t)
	_, err := ParseMarkdown(ctx, "```python #a #b\ncode\n```\n", "doc.md", DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidProperty)
}

func TestStyleForDocument(t *testing.T) {
	require.Equal(t, StyleQuarto, StyleForDocument("x.qmd", StyleNative))
	require.Equal(t, StyleKnitr, StyleForDocument("x.Rmd", StyleNative))
	require.Equal(t, StylePandoc, StyleForDocument("x.md", StylePandoc))
	require.Equal(t, StyleNative, StyleForDocument("x.md", ""))
}
