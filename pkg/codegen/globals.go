package codegen

import (
	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/il"
)

// lowerGlobal emits a module-scope variable as a labeled Data item
// (spec.md §4.8): zero-initialized globals become !fill, anything with a
// non-zero initializer becomes an explicit !byte/!word run. A const
// global still gets real storage here; nothing in the language requires
// constants to be assembler equates rather than addressable memory, and
// giving every global a uniform address keeps LOAD_MEM/STORE_MEM
// translation one shape regardless of constness.
func (g *generator) lowerGlobal(glob il.Global) {
	kind := asmil.LabelFunction
	if glob.Exported {
		kind = asmil.LabelExported
	}
	g.emit(&asmil.Label{Name: globalLabelName(g.mod.Name, glob.Name), Kind: kind})

	width := glob.Type.Size() / elemCount(glob)
	data := dataForInitial(glob.Initial, width)
	g.emit(data)

	g.stats.DataSize += glob.Type.Size()
	g.stats.GlobalCount++
}

func elemCount(glob il.Global) int {
	if n := len(glob.Initial); n > 0 {
		return n
	}
	return 1
}

func dataForInitial(values []uint64, width int) *asmil.Data {
	allZero := true
	for _, v := range values {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return &asmil.Data{Kind: asmil.DataFill, Count: len(values) * width, Value: 0}
	}

	if width == 2 {
		words := make([]uint16, len(values))
		for i, v := range values {
			words[i] = uint16(v)
		}
		return &asmil.Data{Kind: asmil.DataWord, Words: words}
	}

	bytes := make([]uint8, len(values))
	for i, v := range values {
		bytes[i] = uint8(v)
	}
	return &asmil.Data{Kind: asmil.DataByte, Bytes: bytes}
}

func globalLabelName(moduleName, name string) string {
	return moduleName + "." + name
}
