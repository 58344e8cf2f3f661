//go:build windows

package recycle

// nativeRecycler on Windows reports recycling as unavailable: a faithful
// implementation needs the shell's IFileOperation (or the legacy
// SHFileOperation) COM API, which isn't exposed by any library in this
// module's dependency set (golang.org/x/sys/windows stops at raw syscalls;
// go-winio, the pack's other Windows-specific library, is a named-pipe/ACL
// client with no COM shell bindings either). Rather than hand-roll COM
// bindings, this reports unavailable so the executor's documented fallback —
// warn once, then delete permanently — applies. See DESIGN.md.
func New() Recycler {
	return unavailableRecycler{}
}

type unavailableRecycler struct{}

func (unavailableRecycler) Available(root string) bool { return false }

func (unavailableRecycler) Recycle(absPath string) error {
	panic("recycle: Recycle called without checking Available")
}
