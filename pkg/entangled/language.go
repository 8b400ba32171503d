package entangled

// Comment describes how a language writes comments. A zero Close means a
// line comment; a non-empty Close means a block comment wrapping each marker
// line.
type Comment struct {
	Open  string
	Close string
}

// LineComment builds a line-comment style, e.g. "#" or "//".
func LineComment(prefix string) Comment { return Comment{Open: prefix} }

// BlockComment builds a block-comment style, e.g. "/*" and "*/".
func BlockComment(open, close string) Comment { return Comment{Open: open, Close: close} }

// IsBlock reports whether this is a block-comment style.
func (c Comment) IsBlock() bool { return c.Close != "" }

// Wrap turns text into a full comment line body (without indentation).
func (c Comment) Wrap(text string) string {
	if c.IsBlock() {
		return c.Open + " " + text + " " + c.Close
	}
	return c.Open + " " + text
}

// Language binds a fence language identifier to its comment style.
type Language struct {
	Name        string
	Identifiers []string
	Comment     Comment
}

// Matches reports whether identifier names this language.
func (l Language) Matches(identifier string) bool {
	if l.Name == identifier {
		return true
	}
	for _, id := range l.Identifiers {
		if id == identifier {
			return true
		}
	}
	return false
}

// builtinLanguages is the static language table the core consumes. Custom
// languages from the config are consulted first and may shadow entries here.
var builtinLanguages = []Language{
	// C-style
	{Name: "c", Identifiers: []string{"h"}, Comment: LineComment("//")},
	{Name: "cpp", Identifiers: []string{"c++", "cxx", "hpp"}, Comment: LineComment("//")},
	{Name: "java", Comment: LineComment("//")},
	{Name: "javascript", Identifiers: []string{"js"}, Comment: LineComment("//")},
	{Name: "typescript", Identifiers: []string{"ts"}, Comment: LineComment("//")},
	{Name: "rust", Identifiers: []string{"rs"}, Comment: LineComment("//")},
	{Name: "go", Identifiers: []string{"golang"}, Comment: LineComment("//")},
	{Name: "swift", Comment: LineComment("//")},
	{Name: "kotlin", Identifiers: []string{"kt"}, Comment: LineComment("//")},
	{Name: "scala", Comment: LineComment("//")},
	{Name: "csharp", Identifiers: []string{"cs", "c#"}, Comment: LineComment("//")},
	{Name: "zig", Comment: LineComment("//")},
	{Name: "d", Comment: LineComment("//")},
	{Name: "php", Comment: LineComment("//")},
	{Name: "scss", Identifiers: []string{"sass"}, Comment: LineComment("//")},
	{Name: "verilog", Identifiers: []string{"v", "sv"}, Comment: LineComment("//")},

	// Hash-style
	{Name: "python", Identifiers: []string{"py", "python3"}, Comment: LineComment("#")},
	{Name: "ruby", Identifiers: []string{"rb"}, Comment: LineComment("#")},
	{Name: "perl", Identifiers: []string{"pl"}, Comment: LineComment("#")},
	{Name: "bash", Identifiers: []string{"sh", "shell", "zsh"}, Comment: LineComment("#")},
	{Name: "r", Comment: LineComment("#")},
	{Name: "julia", Identifiers: []string{"jl"}, Comment: LineComment("#")},
	{Name: "yaml", Identifiers: []string{"yml"}, Comment: LineComment("#")},
	{Name: "toml", Comment: LineComment("#")},
	{Name: "make", Identifiers: []string{"makefile"}, Comment: LineComment("#")},
	{Name: "dockerfile", Identifiers: []string{"docker"}, Comment: LineComment("#")},
	{Name: "nim", Comment: LineComment("#")},
	{Name: "powershell", Identifiers: []string{"ps1"}, Comment: LineComment("#")},

	// Dash-style
	{Name: "haskell", Identifiers: []string{"hs"}, Comment: LineComment("--")},
	{Name: "elm", Comment: LineComment("--")},
	{Name: "lua", Comment: LineComment("--")},
	{Name: "sql", Comment: LineComment("--")},
	{Name: "ada", Comment: LineComment("--")},
	{Name: "vhdl", Comment: LineComment("--")},

	// Lisp-style
	{Name: "lisp", Identifiers: []string{"cl", "elisp"}, Comment: LineComment(";")},
	{Name: "scheme", Identifiers: []string{"scm"}, Comment: LineComment(";")},
	{Name: "clojure", Identifiers: []string{"clj", "cljs"}, Comment: LineComment(";")},
	{Name: "racket", Identifiers: []string{"rkt"}, Comment: LineComment(";")},

	// Block-comment languages
	{Name: "ocaml", Identifiers: []string{"ml"}, Comment: BlockComment("(*", "*)")},
	{Name: "html", Identifiers: []string{"htm"}, Comment: BlockComment("<!--", "-->")},
	{Name: "xml", Comment: BlockComment("<!--", "-->")},
	{Name: "css", Comment: BlockComment("/*", "*/")},

	// Misc
	{Name: "fsharp", Identifiers: []string{"fs", "f#"}, Comment: LineComment("//")},
	{Name: "json", Comment: LineComment("//")},
	{Name: "tex", Identifiers: []string{"latex"}, Comment: LineComment("%")},
	{Name: "fortran", Identifiers: []string{"f90", "f95"}, Comment: LineComment("!")},
}

// FindBuiltinLanguage looks up a language in the static table.
func FindBuiltinLanguage(identifier string) (Language, bool) {
	for _, l := range builtinLanguages {
		if l.Matches(identifier) {
			return l, true
		}
	}
	return Language{}, false
}
