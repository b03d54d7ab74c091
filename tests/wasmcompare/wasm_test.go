// Package wasmcompare_test checks that evaluating a path expression
// through the wasip1 build (cmd/treepathwasm), run in-process via
// wazero, agrees with the native evaluator on the same tree and
// expression.
//
// The wasip1 binary is not built by `go test`; these tests skip
// automatically when it is absent. Build it first with:
//
//	GOOS=wasip1 GOARCH=wasm go build -o treepath.wasm ./cmd/treepathwasm/
//	mv treepath.wasm tests/wasmcompare/
package wasmcompare_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	wazeroSys "github.com/tetratelabs/wazero/sys"

	"github.com/sandrolain/treepath"
	"github.com/sandrolain/treepath/internal/memtree"
)

var wazeroState struct {
	rt       wazero.Runtime
	compiled wazero.CompiledModule
	err      error
}

func TestMain(m *testing.M) {
	os.Exit(runAllTests(m))
}

func runAllTests(m *testing.M) int {
	ctx := context.Background()

	wasmPath := "treepath.wasm"
	if _, thisFile, _, ok := runtime.Caller(0); ok {
		wasmPath = filepath.Join(filepath.Dir(thisFile), "treepath.wasm")
	}

	if _, err := os.Stat(wasmPath); err == nil {
		r := wazero.NewRuntime(ctx)
		defer r.Close(ctx)

		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			wazeroState.err = err
		} else if wasmBytes, err := os.ReadFile(wasmPath); err != nil {
			wazeroState.err = err
		} else if compiled, err := r.CompileModule(ctx, wasmBytes); err != nil {
			wazeroState.err = err
		} else {
			wazeroState.rt = r
			wazeroState.compiled = compiled
		}
	}

	return m.Run()
}

func skipIfNoWASI(t *testing.T) {
	t.Helper()
	if wazeroState.rt == nil && wazeroState.err == nil {
		t.Skip("treepath.wasm not found — build cmd/treepathwasm for wasip1 and place it alongside this test")
	}
	if wazeroState.err != nil {
		t.Fatalf("wazero init: %v", wazeroState.err)
	}
}

type wasiResult struct {
	Results []struct {
		Label    string `json:"label"`
		Value    string `json:"value"`
		HasValue bool   `json:"hasValue"`
	} `json:"results"`
	Error string `json:"error"`
}

func runWASI(t *testing.T, treeText, expr string) wasiResult {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"tree": treeText, "expr": expr})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	var stdout bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithStdin(bytes.NewReader(payload)).
		WithStdout(&stdout).
		WithArgs("treepath").
		WithName("")
	_, execErr := wazeroState.rt.InstantiateModule(context.Background(), wazeroState.compiled, cfg)
	if execErr != nil {
		var exitErr *wazeroSys.ExitError
		if !errors.As(execErr, &exitErr) || exitErr.ExitCode() > 1 {
			t.Fatalf("instantiate: %v", execErr)
		}
	}

	var result wasiResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, stdout.String())
	}
	return result
}

func TestWazeroCorrectness(t *testing.T) {
	skipIfNoWASI(t)

	const treeText = "a=1\n  b=2\n  c=3\n  b=4\n"

	cases := []struct {
		name string
		expr string
	}{
		{"simple child", "/a/b"},
		{"positional predicate", "/a/b[2]"},
		{"wildcard", "/a/*"},
		{"descendant", "//b"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			root, err := memtree.Parse(strings.NewReader(treeText))
			if err != nil {
				t.Fatalf("parse tree: %v", err)
			}
			path, err := treepath.Parse(root, c.expr)
			if err != nil {
				t.Fatalf("parse expr: %v", err)
			}

			ctx := context.Background()
			var nativeValues []string
			for n, ok := path.First(ctx); ok; n, ok = path.Next(ctx) {
				v, _ := n.Value()
				nativeValues = append(nativeValues, v)
			}

			wasi := runWASI(t, treeText, c.expr)
			if wasi.Error != "" {
				t.Fatalf("wasi error: %s", wasi.Error)
			}
			var wasiValues []string
			for _, r := range wasi.Results {
				wasiValues = append(wasiValues, r.Value)
			}

			if len(nativeValues) != len(wasiValues) {
				t.Fatalf("result count mismatch: native=%v wasi=%v", nativeValues, wasiValues)
			}
			for i := range nativeValues {
				if nativeValues[i] != wasiValues[i] {
					t.Errorf("result[%d]: native=%q wasi=%q", i, nativeValues[i], wasiValues[i])
				}
			}
		})
	}
}
