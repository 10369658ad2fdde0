package job

import (
	"fmt"
	"strings"
)

// RepliconTableType selects the replicon table format uploaded with a
// job.
type RepliconTableType string

const (
	RepliconCSV RepliconTableType = "CSV"
	RepliconTSV RepliconTableType = "TSV"
)

// DermType is the three-way organism envelope selection.
type DermType string

const (
	DermUnknown  DermType = "UNKNOWN"
	DermMonoderm DermType = "MONODERM"
	DermDiderm   DermType = "DIDERM"
)

// JobConfig carries the per-job pipeline options. Field values are
// interpolated verbatim into the parameter string; they are assumed to
// be validated upstream.
type JobConfig struct {
	ProdigalTrainingFile string   `json:"prodigalTrainingFile"`
	HasReplicons         bool     `json:"hasReplicons"`
	TranslationTable     uint8    `json:"translationTable"`
	CompleteGenome       bool     `json:"completeGenome"`
	KeepContigHeaders    bool     `json:"keepContigHeaders"`
	MinContigLength      uint64   `json:"minContigLength"`
	DermType             DermType `json:"dermType"`
	Genus                string   `json:"genus"`
	Species              string   `json:"species"`
	Strain               string   `json:"strain"`
	Plasmid              string   `json:"plasmid"`
	Locus                string   `json:"locus"`
	LocusTag             string   `json:"locusTag"`
	Compliant            bool     `json:"compliant"`
}

// Paths the pipeline template mounts the uploaded inputs at.
const (
	prodigalMountPath = "/data/prodigal.tf"
	repliconMountPath = "/data/replicons.tsv"
)

// Parameters derives the pipeline's command line flags from the
// config. The flag order is fixed; this mapping is the sole interface
// to the annotation tool's argument vocabulary. Exactly one organism
// envelope flag is always emitted, defaulting to the unknown marker.
func (c JobConfig) Parameters() string {
	var flags []string

	if c.MinContigLength > 1 {
		flags = append(flags, fmt.Sprintf("--min-contig-length %d", c.MinContigLength))
	}
	if c.ProdigalTrainingFile != "" {
		flags = append(flags, "--prodigal "+prodigalMountPath)
	}
	if c.HasReplicons {
		flags = append(flags, "--replicons "+repliconMountPath)
	}
	if c.CompleteGenome {
		flags = append(flags, "--complete")
	}
	if c.Locus != "" {
		flags = append(flags, "--locus "+c.Locus)
	}
	if c.LocusTag != "" {
		flags = append(flags, "--locus-tag "+c.LocusTag)
	}
	if c.KeepContigHeaders {
		flags = append(flags, "--keep-contig-headers")
	}
	if c.Genus != "" {
		flags = append(flags, "--genus "+c.Genus)
	}
	if c.Species != "" {
		flags = append(flags, "--species "+c.Species)
	}
	if c.Strain != "" {
		flags = append(flags, "--strain "+c.Strain)
	}
	if c.Plasmid != "" {
		flags = append(flags, "--plasmid "+c.Plasmid)
	}
	if c.Compliant {
		flags = append(flags, "--compliant")
	}
	if c.TranslationTable == 4 {
		flags = append(flags, "--translation-table 4")
	}

	switch c.DermType {
	case DermMonoderm:
		flags = append(flags, "--gram +")
	case DermDiderm:
		flags = append(flags, "--gram -")
	default:
		flags = append(flags, "--gram ?")
	}

	return strings.Join(flags, " ")
}
