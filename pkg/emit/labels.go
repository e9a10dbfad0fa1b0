package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blend65/blend65c/pkg/asmil"
)

// Labels renders a VICE monitor label file (`debug: vice`/`both`,
// SPEC_FULL.md §3): one `al <addr> .<name>` line per label of any kind
// (exported, function, block or temp), with its address resolved by the
// static frame allocator/code generator. Spec.md §6 names `vice` as a debug-mode value but does not
// specify the artifact; this is VICE's own documented label-file format.
func Labels(mod *asmil.Module) string {
	type entry struct {
		addr uint16
		name string
	}
	var entries []entry
	pc := uint16(0)
	for _, it := range mod.Items {
		switch v := it.(type) {
		case *asmil.Origin:
			pc = v.Address
		case *asmil.Label:
			name := strings.TrimPrefix(strings.TrimPrefix(v.Name, "+"), ".")
			entries = append(entries, entry{addr: pc, name: name})
		case *asmil.Instruction:
			pc += uint16(v.Bytes)
		case *asmil.Data:
			pc += uint16(dataLen(v))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].addr != entries[j].addr {
			return entries[i].addr < entries[j].addr
		}
		return entries[i].name < entries[j].name
	})

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "al %04X .%s\n", e.addr, e.name)
	}
	return b.String()
}

func dataLen(d *asmil.Data) int {
	switch d.Kind {
	case asmil.DataByte:
		return len(d.Bytes)
	case asmil.DataWord:
		return 2 * len(d.Words)
	case asmil.DataText:
		return len(d.Text)
	case asmil.DataFill:
		return d.Count
	default:
		return 0
	}
}
