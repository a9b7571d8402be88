// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"taxassign/internal/appcore"
	"taxassign/internal/cli"
	"taxassign/internal/config"
	"taxassign/internal/logging"
	"taxassign/internal/version"
	"taxassign/internal/writers"
)

type application struct {
	stdout, stderr io.Writer
	global         cli.GlobalOptions
}

// NewRootCommand builds the taxassign command tree writing to stdout/stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &application{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "taxassign",
		Short: "Taxonomic assignment of metagenomic sequences from similarity-search hits",
		Long: `taxassign turns tabular similarity-search output into per-query taxonomy.

Commands:
  assign    classify queries from a hit table (rank_lca | rank_vote | score)
  transfer  lift ORF taxonomy to contigs
  config    print the effective configuration`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return appcore.Usage(fmt.Errorf("unknown command %q for \"taxassign\"", args[0]))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return appcore.Usage(err)
	})
	cli.AddGlobalFlags(root.PersistentFlags(), &a.global)

	root.AddCommand(a.assignCommand(), a.transferCommand(), a.configCommand(), versionCommand())
	return root
}

func (a *application) assignCommand() *cobra.Command {
	var o cli.AssignOptions
	cmd := &cobra.Command{
		Use:   "assign <hits> <outfile>",
		Short: "Assign taxonomy to queries from a hit table",
		Example: `  taxassign assign -t taxonomy.sqlite --taxidmap prot.accession2taxid.gz hits.tsv taxonomy.tsv
  taxassign assign -t nodes.tsv --format annotated -m rank_vote -p 8 -c 100 hits.tsv.gz taxonomy.tsv`,
		Args: func(_ *cobra.Command, args []string) error {
			return appcore.Usage(o.Args(args))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, env, err := a.setup(cmd)
			if err != nil {
				return err
			}
			return appcore.Assign(logging.ContextWithLogger(cmd.Context(), env.Log), cfg, o, env)
		},
	}
	cli.AddAssignFlags(cmd.Flags(), &o)
	return cmd
}

func (a *application) transferCommand() *cobra.Command {
	var o cli.TransferOptions
	cmd := &cobra.Command{
		Use:     "transfer <orf_taxonomy> <membership> <contig_taxonomy>",
		Short:   "Transfer taxonomy from ORFs to contigs",
		Example: `  taxassign transfer --ignore-unc-rank phylum --orf-tax-out orfs.contig.tsv orfs.tsv genes.gff contigs.tsv`,
		Args: func(_ *cobra.Command, args []string) error {
			return appcore.Usage(o.Args(args))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, env, err := a.setup(cmd)
			if err != nil {
				return err
			}
			return appcore.Transfer(logging.ContextWithLogger(cmd.Context(), env.Log), cfg, o, env)
		},
	}
	cli.AddTransferFlags(cmd.Flags(), &o)
	return cmd
}

func (a *application) configCommand() *cobra.Command {
	var (
		ao cli.AssignOptions
		to cli.TransferOptions
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.global.ConfigPath, cmd.Flags())
			if err != nil {
				return appcore.Usage(err)
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			if _, err := a.stdout.Write(out); err != nil && !writers.IsBrokenPipe(err) {
				return err
			}
			return nil
		},
	}
	// Accept every config-bound flag so overrides can be previewed.
	cli.AddAssignFlags(cmd.Flags(), &ao)
	extra := pflag.NewFlagSet("transfer", pflag.ContinueOnError)
	cli.AddTransferFlags(extra, &to)
	extra.VisitAll(func(f *pflag.Flag) {
		if cmd.Flags().Lookup(f.Name) == nil {
			cmd.Flags().AddFlag(f)
		}
	})
	cmd.Flags().MarkHidden("overwrite")
	cmd.Flags().MarkHidden("taxidout")
	cmd.Flags().MarkHidden("blobout")
	cmd.Flags().MarkHidden("orf-tax-out")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxassign version %s\n", version.Version)
		},
	}
}

// setup resolves configuration and logging for a command.
func (a *application) setup(cmd *cobra.Command) (*config.Config, *appcore.Env, error) {
	cfg, err := config.Load(a.global.ConfigPath, cmd.Flags())
	if err != nil {
		return nil, nil, appcore.Usage(err)
	}
	level := cfg.Logging.Level
	if a.global.Quiet {
		level = "warn"
	}
	log, err := logging.New(a.stderr, level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, appcore.Usage(err)
	}
	env := appcore.NewEnv(a.stdout, a.stderr, log)
	env.Stats = a.global.Stats
	env.MetricsOut = cfg.Metrics.Textfile
	return cfg, env, nil
}

// RunContext executes argv and returns the process exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(argv)
	err := root.ExecuteContext(parent)
	code := appcore.ExitCode(err)
	if err != nil && code != appcore.ExitCancelled {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if code == appcore.ExitUsage {
			fmt.Fprintln(stderr, "Run 'taxassign --help' for usage.")
		}
	}
	return code
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
