package types

import "strings"

// Language identifies one of the grammars the parser pool knows how to
// build. Adding a language is adding one constant, one descriptor entry, one
// grammar constructor in internal/parser, and one query catalog file
// registered in internal/queries' NewCatalog.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJava       Language = "java"
	LanguageCSharp     Language = "csharp"
	LanguageCpp        Language = "cpp"
	LanguageRust       Language = "rust"
	LanguagePHP        Language = "php"
	LanguageZig        Language = "zig"
	LanguageUnknown    Language = ""
)

// LanguageDescriptor holds the per-language constants the rest of the
// system needs: the set of file extensions routed to this grammar and the
// separator used when assembling fully-qualified names.
type LanguageDescriptor struct {
	Language       Language
	Extensions     []string
	FQNSeparator   string
	DisplayName    string
	LineComment    string // prefix used for leading-comment/docstring detection
}

var languageDescriptors = []LanguageDescriptor{
	{Language: LanguageGo, Extensions: []string{".go"}, FQNSeparator: ".", DisplayName: "Go", LineComment: "//"},
	{Language: LanguagePython, Extensions: []string{".py", ".pyi"}, FQNSeparator: ".", DisplayName: "Python", LineComment: "#"},
	{Language: LanguageJavaScript, Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, FQNSeparator: ".", DisplayName: "JavaScript", LineComment: "//"},
	{Language: LanguageTypeScript, Extensions: []string{".ts", ".mts", ".cts"}, FQNSeparator: ".", DisplayName: "TypeScript", LineComment: "//"},
	{Language: LanguageTSX, Extensions: []string{".tsx"}, FQNSeparator: ".", DisplayName: "TSX", LineComment: "//"},
	{Language: LanguageJava, Extensions: []string{".java"}, FQNSeparator: ".", DisplayName: "Java", LineComment: "//"},
	{Language: LanguageCSharp, Extensions: []string{".cs"}, FQNSeparator: ".", DisplayName: "C#", LineComment: "//"},
	{Language: LanguageCpp, Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h", ".c"}, FQNSeparator: "::", DisplayName: "C/C++", LineComment: "//"},
	{Language: LanguageRust, Extensions: []string{".rs"}, FQNSeparator: "::", DisplayName: "Rust", LineComment: "//"},
	{Language: LanguagePHP, Extensions: []string{".php"}, FQNSeparator: "\\", DisplayName: "PHP", LineComment: "//"},
	{Language: LanguageZig, Extensions: []string{".zig"}, FQNSeparator: ".", DisplayName: "Zig", LineComment: "//"},
}

var extensionIndex = buildExtensionIndex()

func buildExtensionIndex() map[string]Language {
	idx := make(map[string]Language)
	for _, d := range languageDescriptors {
		for _, ext := range d.Extensions {
			idx[ext] = d.Language
		}
	}
	return idx
}

// LanguageForPath returns the Language registered for path's extension, or
// LanguageUnknown if no grammar claims it.
func LanguageForPath(path string) Language {
	ext := ""
	if idx := strings.LastIndexByte(path, '.'); idx >= 0 {
		ext = path[idx:]
	}
	lang, ok := extensionIndex[strings.ToLower(ext)]
	if !ok {
		return LanguageUnknown
	}
	return lang
}

// Descriptor returns l's descriptor. Callers must check ok; LanguageUnknown
// and any future unregistered value both report false.
func (l Language) Descriptor() (LanguageDescriptor, bool) {
	for _, d := range languageDescriptors {
		if d.Language == l {
			return d, true
		}
	}
	return LanguageDescriptor{}, false
}

// FQNSeparator returns the separator this language uses to join a symbol's
// enclosing scope names into a fully-qualified name, defaulting to "." for
// any unregistered language.
func (l Language) FQNSeparator() string {
	if d, ok := l.Descriptor(); ok {
		return d.FQNSeparator
	}
	return "."
}

// LineCommentPrefix returns the token that introduces a line comment in l,
// used by the Context Extractor's leading-comment docstring scan, or ""
// when l is unregistered.
func (l Language) LineCommentPrefix() string {
	if d, ok := l.Descriptor(); ok {
		return d.LineComment
	}
	return ""
}

// AllLanguages returns every registered language, in descriptor-table
// order.
func AllLanguages() []Language {
	out := make([]Language, 0, len(languageDescriptors))
	for _, d := range languageDescriptors {
		out = append(out, d.Language)
	}
	return out
}
