// Package metrics holds the run diagnostics counters. Every run owns a
// private registry so parallel runs (and tests) never share state. A nil
// *Diagnostics is valid and records nothing.
package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taxassign"

// Drop reasons for hits_dropped_total.
const (
	ReasonUnresolvedSubject = "unresolved_subject"
	ReasonMissingTaxon      = "missing_taxon"
	ReasonEValue            = "evalue"
	ReasonTopPercent        = "top_percent"
)

// Reasons for orfs_ignored_total.
const (
	ReasonNoContig         = "no_contig"
	ReasonUnclassifiedRank = "unclassified_rank"
)

// Result labels for queries_total / contigs_total.
const (
	ResultClassified   = "classified"
	ResultUnclassified = "unclassified"
)

// Diagnostics counts non-fatal events of one run.
type Diagnostics struct {
	reg     *prometheus.Registry
	dropped *prometheus.CounterVec
	queries *prometheus.CounterVec
	contigs *prometheus.CounterVec
	orfs    *prometheus.CounterVec
	cache   *prometheus.CounterVec
}

// New registers a fresh set of counters.
func New() *Diagnostics {
	d := &Diagnostics{
		reg: prometheus.NewRegistry(),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hits_dropped_total",
			Help:      "Hit records dropped before consensus, by reason",
		}, []string{"reason"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries assigned, by outcome",
		}, []string{"result"}),
		contigs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contigs_total",
			Help:      "Contigs aggregated, by outcome",
		}, []string{"result"}),
		orfs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orfs_ignored_total",
			Help:      "ORFs left out of contig consensus, by reason",
		}, []string{"reason"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lineage_cache_total",
			Help:      "Lineage memo lookups",
		}, []string{"result"}), // "hit" / "miss"
	}
	d.reg.MustRegister(d.dropped, d.queries, d.contigs, d.orfs, d.cache)
	return d
}

// Registry exposes the underlying registry (tests, textfile export).
func (d *Diagnostics) Registry() *prometheus.Registry {
	if d == nil {
		return nil
	}
	return d.reg
}

// HitsDropped adds n dropped hits for reason.
func (d *Diagnostics) HitsDropped(reason string, n int) {
	if d == nil || n <= 0 {
		return
	}
	d.dropped.WithLabelValues(reason).Add(float64(n))
}

// Query records one finished query.
func (d *Diagnostics) Query(classified bool) {
	if d == nil {
		return
	}
	d.queries.WithLabelValues(result(classified)).Inc()
}

// Contig records one aggregated contig.
func (d *Diagnostics) Contig(classified bool) {
	if d == nil {
		return
	}
	d.contigs.WithLabelValues(result(classified)).Inc()
}

// ORFsIgnored adds n ORFs excluded from a contig consensus.
func (d *Diagnostics) ORFsIgnored(reason string, n int) {
	if d == nil || n <= 0 {
		return
	}
	d.orfs.WithLabelValues(reason).Add(float64(n))
}

// CacheLookup records a lineage memo hit or miss.
func (d *Diagnostics) CacheLookup(hit bool) {
	if d == nil {
		return
	}
	if hit {
		d.cache.WithLabelValues("hit").Inc()
		return
	}
	d.cache.WithLabelValues("miss").Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (d *Diagnostics) WriteTextfile(path string) error {
	if d == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, d.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// Sample is one counter value flattened for display.
type Sample struct {
	Name  string
	Label string
	Value float64
}

// Snapshot gathers all non-zero counters sorted by name and label.
func (d *Diagnostics) Snapshot() ([]Sample, error) {
	if d == nil {
		return nil, nil
	}
	mfs, err := d.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var out []Sample
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			lbl := ""
			for _, lp := range m.GetLabel() {
				lbl = lp.GetValue()
			}
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			out = append(out, Sample{Name: mf.GetName(), Label: lbl, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// Value returns the current value of one counter (0 when absent).
func (d *Diagnostics) Value(name, label string) float64 {
	samples, err := d.Snapshot()
	if err != nil {
		return 0
	}
	for _, s := range samples {
		if s.Name == name && s.Label == label {
			return s.Value
		}
	}
	return 0
}

func result(classified bool) string {
	if classified {
		return ResultClassified
	}
	return ResultUnclassified
}
