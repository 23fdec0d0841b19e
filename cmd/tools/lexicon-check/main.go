// cmd/tools/lexicon-check/main.go
//
// Validates a lexicon override file before it is deployed:
//
//	go run ./cmd/tools/lexicon-check configs/lexicon.json
package main

import (
	"fmt"
	"os"

	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/common/validation"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: lexicon-check <path>")
		os.Exit(2)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
		os.Exit(1)
	}

	if err := validation.LexiconDocument(data); err != nil {
		fmt.Fprintf(os.Stderr, "schema check failed: %v\n", err)
		os.Exit(1)
	}

	lex, err := lexicon.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s is valid (%d categories)\n", path, len(lex.CategoryNames()))
}
