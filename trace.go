package glog

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// maxStackFrames bounds a captured stack
const maxStackFrames = 64

// CaptureCallSite returns the location skip frames above its caller.
// skip 0 is the function calling CaptureCallSite.
func CaptureCallSite(skip int) CallSite {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallSite{File: "???", Line: 0, Function: "(unknown)"}
	}
	fn := "(unknown)"
	if f := runtime.FuncForPC(pc); f != nil {
		fn = shortFuncName(f.Name())
	}
	return CallSite{File: file, Line: line, Function: fn}
}

// CaptureStack returns the active call stack, outermost frame first, ending at the
// frame skip levels above its caller. runtime.goexit is omitted.
func CaptureStack(skip int) []Frame {
	pc := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip+2, pc) // +2 skips runtime.Callers and CaptureStack
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pc[:n])
	var stack []Frame
	for {
		frame, more := frames.Next()
		if frame.Function != "runtime.goexit" {
			stack = append(stack, Frame{
				File:     frame.File,
				Line:     frame.Line,
				Function: shortFuncName(frame.Function),
			})
		}
		if !more {
			break
		}
	}
	// Reverse for caller -> callee order
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

// shortFuncName strips the import path and names closures after their parent
func shortFuncName(full string) string {
	if full == "" {
		return "(unknown)"
	}
	base := filepath.Base(full)
	parts := strings.Split(base, ".")
	if len(parts) < 2 {
		return base
	}
	last := parts[len(parts)-1]
	if strings.HasPrefix(last, "func") && len(last) > 4 {
		isAnonymous := true
		for _, r := range last[4:] {
			if !unicode.IsDigit(r) {
				isAnonymous = false
				break
			}
		}
		if isAnonymous {
			scope := strings.Join(parts[1:len(parts)-1], ".")
			if scope == "" {
				scope = parts[0]
			}
			return fmt.Sprintf("(anonymous in %s)", scope)
		}
	}
	// Keep the receiver for methods: pkg.(*T).M -> (*T).M
	return strings.Join(parts[1:], ".")
}
