package render

import (
	"strings"
	"text/template"

	"github.com/Cahu/krpc-mars-terraformer/codegen/rust"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
)

// Funcs returns the filters available to templates
func Funcs(naming rust.Namer, version string) template.FuncMap {
	return template.FuncMap{
		"one_line":          util.OneLine,
		"snake_case":        func(s string) string { return naming(s) },
		"rust_ident":        rust.Ident,
		"fn_name":           func(s string) string { return rust.Ident(naming(s)) },
		"return_type":       returnType,
		"arg_expr":          argExpr,
		"last":              func(i, n int) bool { return i == n-1 },
		"join":              strings.Join,
		"generator_version": func() string { return version },
	}
}

// returnType is the Rust type a procedure call yields; () for none
func returnType(ret *rust.Return) string {
	switch {
	case ret == nil:
		return "()"
	case ret.Nullable:
		return "Option<" + ret.Type.Expr + ">"
	}
	return ret.Type.Expr
}

// argExpr is the expression passing p to the argument encoder, which takes
// a reference
func argExpr(p rust.Param) string {
	if p.ByRef {
		return p.Name
	}
	return "&" + p.Name
}
