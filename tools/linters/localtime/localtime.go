// Package localtime provides a linter that rejects reads of the host timezone.
//
// Day boundaries are computed against an explicit reference location, so
// code must never depend on the zone of the machine it runs on.
package localtime

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const analyzerName = "localtime"

// Analyzer reports time.Local, (time.Time).Local() and time.Now() calls
// that are not immediately normalized with .UTC() or .In(loc).
var Analyzer = &analysis.Analyzer{
	Name: analyzerName,
	Doc:  "checks for uses of the host timezone: time.Local, .Local() and bare time.Now()",
	Run:  run,
}

func run(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		normalized := make(map[*ast.CallExpr]bool)

		// time.Now().UTC() and time.Now().In(loc) are fine.
		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || (sel.Sel.Name != "UTC" && sel.Sel.Name != "In") {
				return true
			}
			if call, ok := sel.X.(*ast.CallExpr); ok && isTimeFunc(pass, call.Fun, "Now") {
				normalized[call] = true
			}
			return true
		})

		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.CallExpr:
				if isTimeFunc(pass, node.Fun, "Now") && !normalized[node] {
					report(pass, file, node, "time.Now() should be followed by .UTC() or .In(loc)")
				}
			case *ast.SelectorExpr:
				if isTimeLocalVar(pass, node) {
					report(pass, file, node, "time.Local depends on the host timezone; use an explicit location")
				}
				if isTimeLocalMethod(pass, node) {
					report(pass, file, node, ".Local() depends on the host timezone; use .In(loc)")
				}
			}
			return true
		})
	}

	return nil, nil
}

func report(pass *analysis.Pass, file *ast.File, node ast.Node, msg string) {
	if hasNolintComment(pass, file, node) {
		return
	}
	pass.Reportf(node.Pos(), "%s", msg)
}

// isTimeFunc reports whether expr refers to the named function of package time.
func isTimeFunc(pass *analysis.Pass, expr ast.Expr, name string) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != name {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	return ok && fn.Pkg() != nil && fn.Pkg().Path() == "time" && fn.Type().(*types.Signature).Recv() == nil
}

func isTimeLocalVar(pass *analysis.Pass, sel *ast.SelectorExpr) bool {
	if sel.Sel.Name != "Local" {
		return false
	}
	v, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Var)
	return ok && v.Pkg() != nil && v.Pkg().Path() == "time" && !v.IsField()
}

func isTimeLocalMethod(pass *analysis.Pass, sel *ast.SelectorExpr) bool {
	if sel.Sel.Name != "Local" {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "time" {
		return false
	}
	return fn.Type().(*types.Signature).Recv() != nil
}

// hasNolintComment accepts //nolint and //nolint:localtime on the same or previous line.
func hasNolintComment(pass *analysis.Pass, file *ast.File, node ast.Node) bool {
	line := pass.Fset.Position(node.Pos()).Line

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			cl := pass.Fset.Position(c.Pos()).Line
			if cl != line && cl != line-1 {
				continue
			}
			text := strings.TrimPrefix(c.Text, "//")
			if !strings.HasPrefix(strings.TrimSpace(text), "nolint") {
				continue
			}
			directive, _, _ := strings.Cut(strings.TrimSpace(text), " ")
			linters, scoped := strings.CutPrefix(directive, "nolint:")
			if !scoped {
				return directive == "nolint"
			}
			for _, l := range strings.Split(linters, ",") {
				if l == analyzerName {
					return true
				}
			}
		}
	}

	return false
}
