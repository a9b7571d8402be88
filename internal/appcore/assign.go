// internal/appcore/assign.go
package appcore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"taxassign/internal/cli"
	"taxassign/internal/config"
	"taxassign/internal/consensus"
	"taxassign/internal/fileio"
	"taxassign/internal/hits"
	"taxassign/internal/logging"
	"taxassign/internal/metrics"
	"taxassign/internal/pipeline"
	"taxassign/internal/taxonomy"
	"taxassign/internal/writers"
)

// Assign classifies every query of the hit table and writes the taxonomy
// table plus the optional taxid and blob tables. Nothing is written unless
// every query was classified.
func Assign(ctx context.Context, cfg *config.Config, o cli.AssignOptions, env *Env) error {
	log := logging.FromContext(ctx).With(zap.String("command", "assign"))
	if err := preflight(o.Overwrite, o.OutPath, o.TaxIDOut, o.BlobOut); err != nil {
		return err
	}
	ccfg, err := cfg.Consensus()
	if err != nil {
		return Usage(err)
	}
	assigner, err := consensus.New(ccfg)
	if err != nil {
		return Usage(err)
	}
	format, err := hits.ParseFormat(cfg.Assign.Format)
	if err != nil {
		return Usage(err)
	}
	if format == hits.FormatBLAST && cfg.Assign.TaxIDMap == "" {
		return Usage(errors.New("--format blast needs --taxidmap (or use --format annotated)"))
	}
	if cfg.Taxonomy.Path == "" {
		return Usage(errors.New("no taxonomy database (--taxdb or taxonomy.path)"))
	}

	store, err := taxonomy.Open(cfg.Taxonomy.Path)
	if err != nil {
		return fmt.Errorf("open taxonomy: %w", err)
	}
	defer store.Close()

	qs, err := readHits(o.HitsPath, format)
	if err != nil {
		return err
	}
	log.Info("read hit table",
		zap.String("path", o.HitsPath),
		zap.String("queries", count(len(qs))),
		zap.String("mode", ccfg.Strategy.String()))

	var accessions *hits.AccessionMap
	if format == hits.FormatBLAST {
		if accessions, err = hits.LoadAccessionFile(cfg.Assign.TaxIDMap, hits.Subjects(qs)); err != nil {
			return fmt.Errorf("read taxid map: %w", err)
		}
		log.Debug("loaded accession map", zap.String("accessions", count(accessions.Len())))
	}
	if n := hits.Resolve(qs, accessions, env.Diag); n > 0 {
		log.Warn("hits without a taxon were dropped", zap.String("hits", count(n)))
	}

	filters := consensus.Filters{MaxEValue: cfg.Assign.MaxEValue, TopPercent: cfg.Assign.TopPercent}
	newWorker := func() pipeline.Worker[hits.Query, consensus.Assignment] {
		c := consensus.NewClassifier(assigner, filters, taxonomy.NewResolver(store, env.Diag), env.Diag)
		return c.Classify
	}
	pcfg := pipeline.Config{Workers: cfg.Performance.Workers, ChunkSize: cfg.Performance.ChunkSize}
	as, err := pipeline.Run(ctx, pcfg, qs, newWorker)
	if err != nil {
		return err
	}
	if n := env.Diag.Value("taxassign_hits_dropped_total", metrics.ReasonMissingTaxon); n > 0 {
		log.Warn("hits whose taxon is missing from the taxonomy were dropped", zap.Float64("hits", n))
	}

	wopt := writers.Options{Ranks: ccfg.ReportRanks, Mode: ccfg.Strategy}
	outs := []output{{o.OutPath, func(w io.Writer) error {
		return writers.Write(cfg.Assign.OutputFormat, w, as, wopt)
	}}}
	if o.TaxIDOut != "" {
		byID := wopt
		byID.ByTaxID = true
		outs = append(outs, output{o.TaxIDOut, func(w io.Writer) error {
			return writers.WriteTSV(w, as, byID)
		}})
	}
	if o.BlobOut != "" {
		outs = append(outs, output{o.BlobOut, func(w io.Writer) error {
			return writers.WriteBlob(w, as)
		}})
	}
	if err := writeOutputs(env, outs...); err != nil {
		return err
	}

	classified := 0
	for _, a := range as {
		if a.Classified() {
			classified++
		}
	}
	log.Info("assigned",
		zap.String("queries", count(len(as))),
		zap.String("classified", count(classified)))
	return env.finish("assign")
}

func readHits(path string, format hits.Format) ([]hits.Query, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hit table: %w", err)
	}
	defer r.Close()
	qs, err := hits.ReadTable(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return qs, nil
}
