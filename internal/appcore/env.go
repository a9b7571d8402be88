package appcore

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxassign/internal/metrics"
)

// Env is what every command runs with.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.Logger
	Diag   *metrics.Diagnostics
	RunID  string

	// Stats prints the diagnostics table to Stderr when the run ends.
	Stats bool
	// MetricsOut is the Prometheus textfile path ("" disables it).
	MetricsOut string

	start time.Time
}

// NewEnv stamps a run id and a start time.
func NewEnv(stdout, stderr io.Writer, log *zap.Logger) *Env {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Env{
		Stdout: stdout,
		Stderr: stderr,
		Log:    log.With(zap.String("run_id", id)),
		Diag:   metrics.New(),
		RunID:  id,
		start:  time.Now(),
	}
}

// finish exports diagnostics and logs the total run time.
func (e *Env) finish(command string) error {
	if e.Stats {
		if err := WriteStats(e.Stderr, e.Diag); err != nil {
			return err
		}
	}
	if e.MetricsOut != "" {
		if err := e.Diag.WriteTextfile(e.MetricsOut); err != nil {
			return err
		}
	}
	took := time.Since(e.start)
	e.Log.Info(command+" finished",
		zap.Duration("total_time", took.Round(100*time.Millisecond)),
		zap.String("started", humanize.Time(e.start)))
	return nil
}

func count(n int) string { return humanize.Comma(int64(n)) }
