// ABOUTME: Package documentation for the managed runtime library
// ABOUTME: Describes handle types and the rooting discipline callers follow

// Package mylib is the runtime library used by generated code: immutable
// strings, growable lists, hash dicts, in-memory and file-backed streams and
// a format buffer, all stored on a heap.Heap.
//
// Values are small handles (a heap plus a heap.Ref) passed by value. Any
// operation that allocates may collect, so a handle held in a local across
// such a call must be registered as a root first:
//
//	var s mylib.Str
//	defer h.PushRoots(&s).Pop()
//	s = mylib.StrFromC(h, "hello")
//
// Methods root their own receiver and operands while they allocate. Usage
// errors (index out of range, writing after getvalue) panic with a
// heap.FatalError; heap.Recover turns them back into errors.
package mylib
