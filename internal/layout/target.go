package layout

import (
	"fmt"
	"strings"
)

// Env is the toolchain environment component of a target triple.
type Env uint8

const (
	EnvMSVC Env = iota + 1
	EnvGNU
)

func (e Env) String() string {
	switch e {
	case EnvMSVC:
		return "msvc"
	case EnvGNU:
		return "gnu"
	default:
		return "unknown"
	}
}

// Target describes the ABI target triple and its pointer properties.
//
// Only x86_64 Windows is implemented; the environment decides the size of "real".
type Target struct {
	Triple   string // e.g. "x86_64-pc-windows-msvc"
	Arch     string
	OS       string
	Env      Env
	PtrSize  int // bytes
	PtrAlign int // bytes
}

func X86_64WindowsMSVC() Target {
	return Target{
		Triple:   "x86_64-pc-windows-msvc",
		Arch:     "x86_64",
		OS:       "windows",
		Env:      EnvMSVC,
		PtrSize:  8,
		PtrAlign: 8,
	}
}

func X86_64WindowsGNU() Target {
	return Target{
		Triple:   "x86_64-w64-windows-gnu",
		Arch:     "x86_64",
		OS:       "windows",
		Env:      EnvGNU,
		PtrSize:  8,
		PtrAlign: 8,
	}
}

// ParseTarget maps a target triple onto a supported Target.
//
// Accepted forms are arch-vendor-os[-env] with arch x86_64 (or amd64) and os windows
// (or win32, mingw32). A missing environment defaults to msvc.
func ParseTarget(triple string) (Target, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(triple)), "-")
	if len(parts) < 3 {
		return Target{}, fmt.Errorf("invalid target triple %q (expected arch-vendor-os[-env])", triple)
	}
	switch parts[0] {
	case "x86_64", "amd64":
	default:
		return Target{}, fmt.Errorf("unsupported target architecture %q", parts[0])
	}
	env := EnvMSVC
	switch parts[2] {
	case "windows", "win32":
	case "mingw32":
		env = EnvGNU
	default:
		return Target{}, fmt.Errorf("unsupported target os %q", parts[2])
	}
	if len(parts) > 3 {
		switch {
		case strings.HasPrefix(parts[3], "msvc"):
			env = EnvMSVC
		case strings.HasPrefix(parts[3], "gnu"):
			env = EnvGNU
		default:
			return Target{}, fmt.Errorf("unsupported target environment %q", parts[3])
		}
	}
	var t Target
	if env == EnvGNU {
		t = X86_64WindowsGNU()
	} else {
		t = X86_64WindowsMSVC()
	}
	t.Triple = strings.TrimSpace(triple)
	return t, nil
}

// RealIs80Bits reports whether "real" is the x87 extended type. Under the
// MSVC environment it is a double.
func (t Target) RealIs80Bits() bool {
	return t.Env != EnvMSVC
}
