// ABOUTME: Root package holding the version and the module overview
// ABOUTME: The runtime itself lives in the heap and mylib packages

// Package gcheap is a garbage-collected heap for generated code. Package
// heap provides the arena allocator, the mark/sweep collector and the
// shadow stack of roots; package mylib builds managed strings, lists, dicts
// and buffered I/O on top of it. Packages graph and heapdump turn a live
// heap into an object graph for dominator and retained-size analysis and
// serialize it as JSON or YAML.
package gcheap

// Version is the semantic version of the module
const Version = "0.1.0-dev"
