// Package consensus reduces the filtered hits of one query to a rank-keyed
// taxonomic Assignment. The strategy (rank_lca, rank_vote or score) is fixed
// per run and dispatched once in New; every strategy implements Assigner.
//
// The package is domain-only: it never imports pipeline, writers, cli or app.
package consensus
