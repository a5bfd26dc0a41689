package rust

// rustKeywords are the strict and reserved keywords of Rust 2021
var rustKeywords = map[string]bool{
	"abstract": true, "as": true, "async": true, "await": true, "become": true,
	"box": true, "break": true, "const": true, "continue": true, "crate": true,
	"do": true, "dyn": true, "else": true, "enum": true, "extern": true,
	"false": true, "final": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "macro": true,
	"match": true, "mod": true, "move": true, "mut": true, "override": true,
	"priv": true, "pub": true, "ref": true, "return": true, "self": true,
	"Self": true, "static": true, "struct": true, "super": true, "trait": true,
	"true": true, "try": true, "type": true, "typeof": true, "unsafe": true,
	"unsized": true, "use": true, "virtual": true, "where": true, "while": true,
	"yield": true,
}

// rawForbidden lists keywords that cannot be written as raw identifiers
var rawForbidden = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true,
}

// Ident converts an identifier to a valid Rust identifier.
// Keywords get the r# prefix; the few that Rust refuses even as raw
// identifiers get a trailing underscore instead.
func Ident(s string) string {
	switch {
	case rawForbidden[s]:
		return s + "_"
	case rustKeywords[s]:
		return "r#" + s
	}
	return s
}

// IsKeyword reports whether s is a Rust keyword
func IsKeyword(s string) bool {
	return rustKeywords[s]
}
