package il

// Merge concatenates several modules' functions and globals into one,
// for pkg/codegen.Generate (which only ever takes a single *Module) to
// lower a whole multi-file program in one pass. The first module to
// declare a non-empty EntryPoint wins — spec.md §4.4 allows at most one
// exported `main` across an entire program, so module.Registry having
// already accepted the program means at most one candidate exists.
func Merge(name string, mods ...*Module) *Module {
	out := &Module{Name: name}
	for _, m := range mods {
		out.Functions = append(out.Functions, m.Functions...)
		out.Globals = append(out.Globals, m.Globals...)
		if out.EntryPoint == "" {
			out.EntryPoint = m.EntryPoint
		}
	}
	return out
}
