package glog

import (
	"fmt"
)

// Assertions abort through the fatal path when their condition does not hold.
// Optional args replace the default message and are joined with fmt.Sprint.

// Check fails if cond is false
func (l *Logger) Check(cond bool, args ...any) {
	if !cond {
		l.checkFailed(msgCheckFailed, args)
	}
}

// CheckEqual fails if a != b
func (l *Logger) CheckEqual(a, b any, args ...any) {
	if msg, failed := evalEqual(a, b); failed {
		l.checkFailed(msg, args)
	}
}

// CheckNotEqual fails if a == b
func (l *Logger) CheckNotEqual(a, b any, args ...any) {
	if msg, failed := evalNotEqual(a, b); failed {
		l.checkFailed(msg, args)
	}
}

// CheckLessEqual fails unless a <= b
func (l *Logger) CheckLessEqual(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opLessEqual); failed {
		l.checkFailed(msg, args)
	}
}

// CheckGreaterEqual fails unless a >= b
func (l *Logger) CheckGreaterEqual(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opGreaterEqual); failed {
		l.checkFailed(msg, args)
	}
}

// CheckLessThan fails unless a < b
func (l *Logger) CheckLessThan(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opLessThan); failed {
		l.checkFailed(msg, args)
	}
}

// CheckGreaterThan fails unless a > b
func (l *Logger) CheckGreaterThan(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opGreaterThan); failed {
		l.checkFailed(msg, args)
	}
}

// CheckNotNil fails if v is nil, including typed nil pointers, maps, slices, chans and funcs
func (l *Logger) CheckNotNil(v any, args ...any) {
	if isNil(v) {
		l.checkFailed(msgNilValue, args)
	}
}

// checkFailed must be called directly from an exported check so that checkDepth
// lands on the statement invoking the check
func (l *Logger) checkFailed(defaultMsg string, args []any) {
	msg := defaultMsg
	if len(args) > 0 {
		msg = fmt.Sprint(args...)
	}
	l.output(LevelFatal, checkDepth, msg)
}

// orderOp is a relation checked by the ordering assertions
type orderOp int

const (
	opLessEqual orderOp = iota
	opGreaterEqual
	opLessThan
	opGreaterThan
)

// holds reports whether cmp(a, b) satisfies the relation
func (op orderOp) holds(c int) bool {
	switch op {
	case opLessEqual:
		return c <= 0
	case opGreaterEqual:
		return c >= 0
	case opLessThan:
		return c < 0
	default:
		return c > 0
	}
}

// negation is the comparator printed when the relation fails
func (op orderOp) negation() string {
	switch op {
	case opLessEqual:
		return ">"
	case opGreaterEqual:
		return "<"
	case opLessThan:
		return ">="
	default:
		return "<="
	}
}

func evalEqual(a, b any) (string, bool) {
	if equalValues(a, b) {
		return "", false
	}
	return failureMessage(a, "!=", b), true
}

func evalNotEqual(a, b any) (string, bool) {
	if !equalValues(a, b) {
		return "", false
	}
	return failureMessage(a, "==", b), true
}

func evalOrder(a, b any, op orderOp) (string, bool) {
	c, ok := compareValues(a, b)
	if !ok {
		return fmt.Sprintf("check failed: cannot order %T and %T", a, b), true
	}
	if op.holds(c) {
		return "", false
	}
	return failureMessage(a, op.negation(), b), true
}

// failureMessage renders "check failed: <a> <op> <b>"
func failureMessage(a any, op string, b any) string {
	return "check failed: " + renderValue(a) + " " + op + " " + renderValue(b)
}
