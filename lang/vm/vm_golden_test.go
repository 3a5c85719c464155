package vm_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neon-lang/neon/internal/filetest"
	"github.com/neon-lang/neon/lang/vm"
)

var testUpdateVMTests = flag.Bool("test.update-vm-tests", false, "If set, replace expected VM scenario results with actual results.")

// TestVMScenarios runs every testdata/in/*.neon script through the VM and
// diffs its stdout against the matching golden file in testdata/out.
func TestVMScenarios(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".neon") {
		t.Run(fi.Name(), func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			assert.NoError(t, err)

			var out bytes.Buffer
			v := vm.New(vm.DefaultConfig(), &out)
			_, rerr := v.Interpret(fi.Name(), string(source))
			if rerr != nil {
				t.Fatalf("interpret failed: %s", vm.GetFormattedErrors(fi.Name(), string(source), rerr))
			}

			filetest.DiffCustom(t, fi, "output", ".want", out.String(), resultDir, testUpdateVMTests)
		})
	}
}
