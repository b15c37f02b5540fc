/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reserved.go
Description: Reserved identifiers per target language and the Go initialism list.
*/

package naming

import (
	"github.com/hashicorp/go-set/v3"
)

// initialisms are kept fully upper-case by GoPascalCase
var initialisms = set.From([]string{
	"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS",
	"ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH",
	"TCP", "TLS", "TTL", "UDP", "UI", "UID", "UUID", "URI", "URL", "UTF8", "VM", "XML",
	"XMPP", "XSRF", "XSS",
})

var keywords = map[string][]string{
	"go": {
		"break", "case", "chan", "const", "continue", "default", "defer", "else",
		"fallthrough", "for", "func", "go", "goto", "if", "import", "interface", "map",
		"package", "range", "return", "select", "struct", "switch", "type", "var",
	},
	"rust": {
		"as", "async", "await", "break", "const", "continue", "crate", "dyn", "else", "enum",
		"extern", "false", "fn", "for", "if", "impl", "in", "let", "loop", "match", "mod",
		"move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct", "super",
		"trait", "true", "type", "unsafe", "use", "where", "while", "abstract", "become",
		"box", "do", "final", "macro", "override", "priv", "try", "typeof", "unsized",
		"virtual", "yield",
	},
	"typescript": {
		"break", "case", "catch", "class", "const", "continue", "debugger", "default",
		"delete", "do", "else", "enum", "export", "extends", "false", "finally", "for",
		"function", "if", "import", "in", "instanceof", "new", "null", "return", "super",
		"switch", "this", "throw", "true", "try", "typeof", "var", "void", "while", "with",
		"implements", "interface", "let", "package", "private", "protected", "public",
		"static", "yield", "any", "boolean", "number", "string", "symbol", "unknown",
		"never", "object", "type",
	},
	"python": {
		"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally", "for", "from",
		"global", "if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass",
		"raise", "return", "try", "while", "with", "yield",
	},
}

// typeNames are identifiers a generated type must not shadow, on top of keywords
var typeNames = map[string][]string{
	"go":         {"Any"},
	"rust":       {"Box", "Option", "Result", "String", "Value", "Vec", "HashMap"},
	"typescript": {"Array", "Boolean", "Number", "Object", "String", "Record", "Date"},
	"python":     {"Any", "List", "Optional", "Union", "dataclass", "field", "annotations"},
	"schema":     {},
}

// Keywords returns the reserved words of a language ("go", "rust", "typescript", "python")
func Keywords(language string) []string {
	return append([]string(nil), keywords[language]...)
}

// ReservedTypeNames returns keywords plus the library type names a language's generated
// declarations would otherwise shadow
func ReservedTypeNames(language string) []string {
	return append(Keywords(language), typeNames[language]...)
}
