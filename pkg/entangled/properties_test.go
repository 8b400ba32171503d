package entangled

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNative_Table(t *testing.T) {
	cases := []struct {
		name     string
		info     string
		wantLang string
		wantID   string
		wantFile string
		wantErr  bool
	}{
		{name: "language only", info: "python", wantLang: "python"},
		{name: "empty", info: ""},
		{name: "id only", info: "#main", wantID: "main"},
		{name: "full", info: "python #main file=out.py", wantLang: "python", wantID: "main", wantFile: "out.py"},
		{name: "dotted class", info: ".python #main", wantLang: "python", wantID: "main"},
		{name: "quoted value", info: `python file="out file.py"`, wantLang: "python", wantFile: "out file.py"},
		{name: "single quoted value", info: "python file='out.py'", wantLang: "python", wantFile: "out.py"},
		{name: "path with slashes", info: "rust file=src/lib/mod.rs", wantLang: "rust", wantFile: "src/lib/mod.rs"},
		{name: "namespaced id", info: "#module::function", wantID: "module::function"},
		{name: "duplicate id", info: "python #a #b", wantErr: true},
		{name: "unterminated quote", info: `python file="oops`, wantErr: true},
		{name: "bare word after first", info: "python main", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			props, err := ParseNative(tc.info)
			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrInvalidProperty)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantLang, props.Language())
			require.Equal(t, tc.wantID, props.ID)
			require.Equal(t, tc.wantFile, props.File())
		})
	}
}

func TestParseNative_EscapedQuotes(t *testing.T) {
	props, err := ParseNative(`desc="hello \"world\""`)
	require.NoError(t, err)
	require.Equal(t, `hello "world"`, props.Get("desc"))
}

func TestParseNative_UnknownKeysRetained(t *testing.T) {
	props, err := ParseNative("python #main mode=0755 exec=true")
	require.NoError(t, err)
	require.Equal(t, "0755", props.Get("mode"))
	require.Equal(t, "true", props.Get("exec"))
	require.Equal(t, "", props.Get("nope"))
}

func TestParsePandoc(t *testing.T) {
	props, err := ParsePandoc("{.python #main file=out.py}")
	require.NoError(t, err)
	require.Equal(t, "python", props.Language())
	require.Equal(t, "main", props.ID)
	require.Equal(t, "out.py", props.File())

	// A brace-less info string still parses (prose fences stay non-fatal);
	// an unbalanced brace does not.
	props, err = ParsePandoc(".python #main")
	require.NoError(t, err)
	require.Equal(t, "main", props.ID)

	_, err = ParsePandoc("{.python #main")
	require.ErrorIs(t, err, ErrInvalidProperty)
}

func TestParseKnitr_Table(t *testing.T) {
	cases := []struct {
		name     string
		info     string
		wantLang string
		wantID   string
		wantFile string
	}{
		{name: "language only", info: "{python}", wantLang: "python"},
		{name: "with label", info: "{python, label=main}", wantLang: "python", wantID: "main"},
		{name: "full", info: "{r, label=main, file=out.R}", wantLang: "r", wantID: "main", wantFile: "out.R"},
		{name: "quoted", info: `{r, label="my-chunk", file="a/b.R"}`, wantLang: "r", wantID: "my-chunk", wantFile: "a/b.R"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			props, err := ParseKnitr(tc.info)
			require.NoError(t, err)
			require.Equal(t, tc.wantLang, props.Language())
			require.Equal(t, tc.wantID, props.ID)
			require.Equal(t, tc.wantFile, props.File())
		})
	}
}

func TestParseKnitr_BooleanFlag(t *testing.T) {
	props, err := ParseKnitr("{r, echo=FALSE, cache}")
	require.NoError(t, err)
	require.Equal(t, "FALSE", props.Get("echo"))
	require.Equal(t, "true", props.Get("cache"))
}

func TestQuartoOptions(t *testing.T) {
	content := "#| label: main\n#| file: out.py\nprint('hi')\nprint('bye')\n"
	opts, remaining := HarvestQuartoOptions(content)

	require.Equal(t, "main", opts.Label)
	require.Equal(t, "out.py", opts.File)
	require.Equal(t, 2, opts.Lines)
	require.Equal(t, "print('hi')\nprint('bye')\n", remaining)

	props := opts.Properties("python")
	require.Equal(t, "python", props.Language())
	require.Equal(t, "main", props.ID)
	require.Equal(t, "out.py", props.File())
}

func TestQuartoOptions_EqualsStyleAndQuotes(t *testing.T) {
	content := "#| label=main\n#| file: 'out.py'\ncode\n"
	opts, remaining := HarvestQuartoOptions(content)
	require.Equal(t, "main", opts.Label)
	require.Equal(t, "out.py", opts.File)
	require.Equal(t, "code\n", remaining)
}

func TestParseQuartoInfo(t *testing.T) {
	props, err := ParseQuartoInfo("{python}")
	require.NoError(t, err)
	require.Equal(t, "python", props.Language())
	require.Equal(t, "", props.ID)
}
