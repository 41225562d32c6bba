// Package pkg provides the core libraries for narrate's prose rendering.
//
// # Overview
//
// Narrate turns a program into a book: it parses and compiles a fable
// source file, then renders both the syntax tree and the bytecode as
// English prose. The pkg directory is organized into four main areas:
//
//  1. [fable] - Language frontend (lexer, parser, bytecode compiler)
//  2. [prose] - Prose renderers (tree, instructions, values)
//  3. [book] - Document assembly (metadata, preface, sections, graphs)
//  4. [cache] - Render cache (file, null, redis backends)
//
// # Architecture
//
// The typical data flow through narrate:
//
//	Source text
//	         ↓
//	    [fable] package (tokens → syntax tree)
//	         ↓
//	    [fable/bytecode] package (tree → code objects)
//	         ↓
//	    [prose] package (tree + code objects → prose fragments)
//	         ↓
//	    [book] package (fragments → markdown document)
//
// # Quick Start
//
//	cfg := book.DefaultConfig()
//	builder := book.NewBuilder(cfg, nil)
//	doc, err := builder.Build("main.fable", source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(doc)
package pkg
