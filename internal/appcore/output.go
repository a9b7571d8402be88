package appcore

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"taxassign/internal/fileio"
	"taxassign/internal/writers"
)

// stdoutPath writes to the command's stdout.
const stdoutPath = "-"

// preflight rejects bad output paths before any input is read.
func preflight(overwrite bool, paths ...string) error {
	for _, p := range paths {
		if p == stdoutPath {
			continue
		}
		if err := fileio.CheckOutput(p, overwrite); err != nil {
			return err
		}
	}
	return nil
}

// writeOutput creates path (or uses stdout for "-") and runs write into it.
func writeOutput(env *Env, path string, write func(io.Writer) error) error {
	if path == stdoutPath {
		if err := write(env.Stdout); err != nil && !writers.IsBrokenPipe(err) {
			return err
		}
		return nil
	}
	w, err := fileio.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(w); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// output is one file a command produces.
type output struct {
	path  string
	write func(io.Writer) error
}

// writeOutputs renders every output in memory, then writes them in order.
// When a file cannot be written the ones already written are removed, so a
// run leaves either all of its outputs or none.
func writeOutputs(env *Env, outs ...output) error {
	bufs := make([]bytes.Buffer, len(outs))
	for i, o := range outs {
		if err := o.write(&bufs[i]); err != nil {
			return fmt.Errorf("render %s: %w", o.path, err)
		}
	}
	var written []string
	for i, o := range outs {
		err := writeOutput(env, o.path, func(w io.Writer) error {
			_, err := bufs[i].WriteTo(w)
			return err
		})
		if err != nil {
			for _, p := range written {
				os.Remove(p)
			}
			return err
		}
		if o.path != stdoutPath {
			written = append(written, o.path)
		}
	}
	return nil
}
