// internal/appcore/transfer.go
package appcore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"taxassign/internal/cli"
	"taxassign/internal/config"
	"taxassign/internal/fileio"
	"taxassign/internal/logging"
	"taxassign/internal/pipeline"
	"taxassign/internal/transfer"
	"taxassign/internal/writers"
)

// Transfer aggregates ORF taxonomy to contigs and writes the contig table
// (and, with --orf-tax-out, the contig-consistent ORF table).
func Transfer(ctx context.Context, cfg *config.Config, o cli.TransferOptions, env *Env) error {
	log := logging.FromContext(ctx).With(zap.String("command", "transfer"))
	if err := preflight(o.Overwrite, o.OutPath, o.ORFTaxOut); err != nil {
		return err
	}
	mformat, err := transfer.ParseMembershipFormat(cfg.Transfer.MembershipFormat)
	if err != nil {
		return Usage(err)
	}

	table, err := readORFTable(o.ORFTable)
	if err != nil {
		return err
	}
	members, err := readMembership(o.Membership, mformat)
	if err != nil {
		return err
	}
	log.Info("read inputs",
		zap.String("orfs", count(len(table.Rows))),
		zap.String("contigs", count(len(members.Contigs()))))

	res, err := transfer.Aggregate(ctx, table, members, transfer.Options{
		IgnoreUnclassifiedAt: cfg.Transfer.IgnoreUncRank,
		Reverse:              o.ORFTaxOut != "",
		Pipeline:             pipeline.Config{Workers: cfg.Performance.Workers, ChunkSize: cfg.Performance.ChunkSize},
	}, env.Diag)
	if errors.Is(err, transfer.ErrUnknownRank) {
		return Usage(err)
	}
	if err != nil {
		return err
	}

	outs := []output{{o.OutPath, func(w io.Writer) error {
		return writers.WriteRows(w, writers.ContigKey, res.Ranks, res.Contigs)
	}}}
	if o.ORFTaxOut != "" {
		outs = append(outs, output{o.ORFTaxOut, func(w io.Writer) error {
			return writers.WriteRows(w, writers.QueryKey, res.Ranks, res.ORFs)
		}})
	}
	if err := writeOutputs(env, outs...); err != nil {
		return err
	}
	log.Info("transferred", zap.String("contigs", count(len(res.Contigs))))
	return env.finish("transfer")
}

func readORFTable(path string) (*transfer.Table, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ORF taxonomy: %w", err)
	}
	defer r.Close()
	t, err := transfer.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func readMembership(path string, format transfer.MembershipFormat) (*transfer.Membership, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open membership: %w", err)
	}
	defer r.Close()
	m, err := transfer.ReadMembership(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
