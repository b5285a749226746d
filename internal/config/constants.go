package config

// Version is the toolchain version reported by -version.
const Version = "0.3.0"

// DumpFileExt is the extension of checked-program dump files emitted by the
// frontend for the backend tools.
const DumpFileExt = ".hpd"

// PlatformFileExt is the extension of platform memory configuration files.
const PlatformFileExt = ".yaml"

// DefaultEntryPoint is the function the runtime jumps to after reset when
// the platform configuration names no entry points.
const DefaultEntryPoint = "main"

// Builtin intrinsic names. Calls to these lower to inline code or ROM
// routines, never to user frames, so the call graph ignores them.
const (
	PokeFuncName   = "poke"
	PeekFuncName   = "peek"
	HaltFuncName   = "halt"
	InFuncName     = "in"
	OutFuncName    = "out"
	MemsetFuncName = "memset"
	MemcpyFuncName = "memcpy"
)

var builtins = map[string]bool{
	PokeFuncName:   true,
	PeekFuncName:   true,
	HaltFuncName:   true,
	InFuncName:     true,
	OutFuncName:    true,
	MemsetFuncName: true,
	MemcpyFuncName: true,
}

// IsBuiltin reports whether name is a builtin intrinsic.
func IsBuiltin(name string) bool {
	return builtins[name]
}
