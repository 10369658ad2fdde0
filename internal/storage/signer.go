// Package storage issues presigned S3 URLs for job inputs and results.
// The service itself never moves object bytes; clients talk to the
// bucket directly with the signed URLs.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/seqcenter/annoserve/internal/job"
)

// InputKind names one of the objects a client uploads before starting
// a job.
type InputKind string

const (
	InputFasta        InputKind = "fastadata.fasta"
	InputProdigal     InputKind = "prodigal.tf"
	InputRepliconsCSV InputKind = "replicons.csv"
	InputRepliconsTSV InputKind = "replicons.tsv"
)

// OutputKind names one of the pipeline's result objects, by file
// extension under the job's results prefix.
type OutputKind string

const (
	OutputEMBL            OutputKind = "embl"
	OutputFAA             OutputKind = "faa"
	OutputFAAHypothetical OutputKind = "hypotheticals.faa"
	OutputFFN             OutputKind = "ffn"
	OutputFNA             OutputKind = "fna"
	OutputGBFF            OutputKind = "gbff"
	OutputGFF3            OutputKind = "gff"
	OutputJSON            OutputKind = "json"
	OutputTSV             OutputKind = "tsv"
	OutputTSVHypothetical OutputKind = "hypotheticals.tsv"
)

const (
	// Uploads fit comfortably in under three hours, even for large
	// genomes on slow links.
	DefaultUploadExpiry = 10000 * time.Second
	// Results stay fetchable for the retention window.
	DefaultDownloadExpiry = 60 * 24 * time.Hour
)

// Config holds the bucket coordinates and credentials for presigning.
type Config struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	ForcePathStyle bool
	UploadExpiry   time.Duration
	DownloadExpiry time.Duration
}

// Signer presigns upload and download URLs against a single bucket.
// Presigning is pure computation over the credentials; no request is
// made to the bucket.
type Signer struct {
	presign        *s3.PresignClient
	bucket         string
	uploadExpiry   time.Duration
	downloadExpiry time.Duration
}

var _ job.ObjectSigner = (*Signer)(nil)

// NewSigner builds a Signer from the bucket configuration.
func NewSigner(ctx context.Context, cfg Config) (*Signer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	uploadExpiry := cfg.UploadExpiry
	if uploadExpiry <= 0 {
		uploadExpiry = DefaultUploadExpiry
	}
	downloadExpiry := cfg.DownloadExpiry
	if downloadExpiry <= 0 {
		downloadExpiry = DefaultDownloadExpiry
	}

	return &Signer{
		presign:        s3.NewPresignClient(client),
		bucket:         cfg.Bucket,
		uploadExpiry:   uploadExpiry,
		downloadExpiry: downloadExpiry,
	}, nil
}

func inputKey(jobID string, kind InputKind) string {
	return fmt.Sprintf("jobs/%s/inputs/%s", jobID, kind)
}

func outputKey(jobID string, kind OutputKind) string {
	return fmt.Sprintf("jobs/%s/results/result.%s", jobID, kind)
}

// SignUpload presigns a PUT for one job input.
func (s *Signer) SignUpload(jobID string, kind InputKind) (string, error) {
	req, err := s.presign.PresignPutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(inputKey(jobID, kind)),
	}, s3.WithPresignExpires(s.uploadExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload %s: %w", kind, err)
	}
	return req.URL, nil
}

// SignDownload presigns a GET for one result object.
func (s *Signer) SignDownload(jobID string, kind OutputKind) (string, error) {
	req, err := s.presign.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(outputKey(jobID, kind)),
	}, s3.WithPresignExpires(s.downloadExpiry))
	if err != nil {
		return "", fmt.Errorf("presign download %s: %w", kind, err)
	}
	return req.URL, nil
}

// UploadBundle presigns the three input uploads a job needs.
func (s *Signer) UploadBundle(jobID string, replicons job.RepliconTableType) (job.UploadLinks, error) {
	repliconKind := InputRepliconsCSV
	if replicons == job.RepliconTSV {
		repliconKind = InputRepliconsTSV
	}

	var links job.UploadLinks
	var err error
	if links.Fasta, err = s.SignUpload(jobID, InputFasta); err != nil {
		return job.UploadLinks{}, err
	}
	if links.Prodigal, err = s.SignUpload(jobID, InputProdigal); err != nil {
		return job.UploadLinks{}, err
	}
	if links.Replicons, err = s.SignUpload(jobID, repliconKind); err != nil {
		return job.UploadLinks{}, err
	}
	return links, nil
}

// DownloadBundle presigns one download URL per result file.
func (s *Signer) DownloadBundle(jobID string) (job.ResultFiles, error) {
	var files job.ResultFiles
	for _, target := range []struct {
		kind OutputKind
		dst  *string
	}{
		{OutputEMBL, &files.EMBL},
		{OutputFAA, &files.FAA},
		{OutputFAAHypothetical, &files.FAAHypothetical},
		{OutputFFN, &files.FFN},
		{OutputFNA, &files.FNA},
		{OutputGBFF, &files.GBFF},
		{OutputGFF3, &files.GFF3},
		{OutputJSON, &files.JSON},
		{OutputTSV, &files.TSV},
		{OutputTSVHypothetical, &files.TSVHypothetical},
	} {
		url, err := s.SignDownload(jobID, target.kind)
		if err != nil {
			return job.ResultFiles{}, err
		}
		*target.dst = url
	}
	return files, nil
}
