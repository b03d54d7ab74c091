//go:build wasip1

// Command treepathwasm is the WASI (wasip1) entrypoint for driving the
// path-expression engine from any language that supports the
// WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "tree": "<indented label=value text>", "expr": "<path expression>" }
//	stdout: { "results": [ {"label":"...","value":"...","hasValue":bool}, ... ] }  on success
//	        { "error": "<message>" }                                              on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o treepath.wasm ./cmd/treepathwasm/
//
// Usage with wasmtime CLI:
//
//	echo '{"tree":"a=1\n  b=2","expr":"/a/b"}' | wasmtime treepath.wasm
package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/sandrolain/treepath"
	"github.com/sandrolain/treepath/internal/memtree"
	"github.com/sandrolain/treepath/pkg/tree"
)

type request struct {
	Tree string `json:"tree"`
	Expr string `json:"expr"`
}

type nodeResult struct {
	Label    string `json:"label"`
	Value    string `json:"value,omitempty"`
	HasValue bool   `json:"hasValue"`
}

type response struct {
	Results []nodeResult `json:"results,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	root, err := memtree.Parse(strings.NewReader(req.Tree))
	if err != nil {
		writeResponse(response{Error: "invalid tree: " + err.Error()}, 1)
	}

	path, err := treepath.Parse(root, req.Expr)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	ctx := context.Background()
	var results []nodeResult
	for n, ok := path.First(ctx); ok; n, ok = path.Next(ctx) {
		results = append(results, toNodeResult(n))
	}
	if msg, _, _ := path.Error(); msg != "" {
		writeResponse(response{Error: msg}, 1)
	}

	writeResponse(response{Results: results}, 0)
}

func toNodeResult(n tree.Node) nodeResult {
	label, _ := n.Label()
	value, hasValue := n.Value()
	return nodeResult{Label: label, Value: value, HasValue: hasValue}
}
