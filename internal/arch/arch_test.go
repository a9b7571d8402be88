// internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

const mod = "taxassign/"

var outer = []string{
	mod + "internal/writers", mod + "internal/cli", mod + "internal/config",
	mod + "internal/appcore", mod + "internal/app", mod + "cmd/",
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	require.NoError(t, cmd.Run(), "go list")
	dec := json.NewDecoder(&out)

	bans := map[string][]string{
		mod + "internal/taxonomy":  append([]string{mod + "internal/pipeline", mod + "internal/consensus"}, outer...),
		mod + "internal/hits":      append([]string{mod + "internal/pipeline", mod + "internal/consensus"}, outer...),
		mod + "internal/consensus": append([]string{mod + "internal/pipeline"}, outer...),
		mod + "internal/transfer":  outer,
		mod + "internal/pipeline": {
			mod + "internal/appcore", mod + "internal/app", mod + "internal/cli", mod + "cmd/",
		},
		mod + "internal/writers": {
			mod + "internal/appcore", mod + "internal/app", mod + "internal/cli",
			mod + "internal/pipeline", mod + "cmd/",
		},
		mod + "pkg/api": {mod + "internal/"},
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, mod) {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if imp != prefix && !strings.HasPrefix(imp, prefix+"/") {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, mod) {
					continue
				}
				for _, ban := range forbidden {
					if strings.HasPrefix(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
