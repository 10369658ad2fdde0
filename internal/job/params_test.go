package job

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParametersDefaults(t *testing.T) {
	t.Parallel()

	var cfg JobConfig
	got := cfg.Parameters()

	assert.Equal(t, "--gram ?", got)
}

func TestParametersFlagMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  JobConfig
		want string
	}{
		{
			name: "complete genome with contig headers kept, monoderm",
			cfg: JobConfig{
				CompleteGenome:    true,
				KeepContigHeaders: true,
				DermType:          DermMonoderm,
			},
			want: "--complete --keep-contig-headers --gram +",
		},
		{
			name: "diderm",
			cfg:  JobConfig{DermType: DermDiderm},
			want: "--gram -",
		},
		{
			name: "min contig length only when above one",
			cfg:  JobConfig{MinContigLength: 200},
			want: "--min-contig-length 200 --gram ?",
		},
		{
			name: "min contig length of one suppressed",
			cfg:  JobConfig{MinContigLength: 1},
			want: "--gram ?",
		},
		{
			name: "training file mounts fixed path",
			cfg:  JobConfig{ProdigalTrainingFile: "custom.tf"},
			want: "--prodigal /data/prodigal.tf --gram ?",
		},
		{
			name: "replicon table mounts fixed path",
			cfg:  JobConfig{HasReplicons: true},
			want: "--replicons /data/replicons.tsv --gram ?",
		},
		{
			name: "taxonomy and locus flags",
			cfg: JobConfig{
				Genus:    "Escherichia",
				Species:  "coli",
				Strain:   "K-12",
				Plasmid:  "pXYZ",
				Locus:    "ECO",
				LocusTag: "ECO_",
			},
			want: "--locus ECO --locus-tag ECO_ --genus Escherichia --species coli --strain K-12 --plasmid pXYZ --gram ?",
		},
		{
			name: "compliant and alternate translation table",
			cfg: JobConfig{
				Compliant:        true,
				TranslationTable: 4,
			},
			want: "--compliant --translation-table 4 --gram ?",
		},
		{
			name: "standard translation table suppressed",
			cfg:  JobConfig{TranslationTable: 11},
			want: "--gram ?",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.Parameters())
		})
	}
}

func TestParametersOrderIsStable(t *testing.T) {
	t.Parallel()

	cfg := JobConfig{
		MinContigLength:      500,
		ProdigalTrainingFile: "t.tf",
		HasReplicons:         true,
		CompleteGenome:       true,
		Locus:                "L",
		LocusTag:             "LT",
		KeepContigHeaders:    true,
		Genus:                "G",
		Species:              "S",
		Strain:               "St",
		Plasmid:              "P",
		Compliant:            true,
		TranslationTable:     4,
		DermType:             DermMonoderm,
	}

	got := cfg.Parameters()
	order := []string{
		"--min-contig-length 500",
		"--prodigal /data/prodigal.tf",
		"--replicons /data/replicons.tsv",
		"--complete",
		"--locus L",
		"--locus-tag LT",
		"--keep-contig-headers",
		"--genus G",
		"--species S",
		"--strain St",
		"--plasmid P",
		"--compliant",
		"--translation-table 4",
		"--gram +",
	}
	assert.Equal(t, strings.Join(order, " "), got)
}

func TestJobConfigDecodeDefaults(t *testing.T) {
	t.Parallel()

	// Clients that omit hasReplicons get the permissive default; an
	// explicit false must survive decoding.
	cfg := JobConfig{HasReplicons: true}
	require.NoError(t, json.Unmarshal([]byte(`{"dermType":"MONODERM"}`), &cfg))
	assert.True(t, cfg.HasReplicons)
	assert.Equal(t, DermMonoderm, cfg.DermType)

	cfg = JobConfig{HasReplicons: true}
	require.NoError(t, json.Unmarshal([]byte(`{"hasReplicons":false}`), &cfg))
	assert.False(t, cfg.HasReplicons)
}
