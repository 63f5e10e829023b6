// Package termsource loads glossary term rows from xlsx or csv files, local or on S3
package termsource

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	s3Scheme = "s3://"

	// DefaultMaxBytes caps a term source read, local or S3
	DefaultMaxBytes int64 = 64 << 20
)

// Record is one row keyed by lower-cased header; values are passed through verbatim
type Record = map[string]string

// ObjectGetter is the slice of the S3 client the reader needs
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Reader loads term records
type Reader struct {
	s3    ObjectGetter
	newS3 func(ctx context.Context) (ObjectGetter, error)
	max   int64
	log   logger.Logger
}

// Option configures a Reader
type Option func(*Reader)

// WithS3 injects the S3 client instead of loading the default AWS chain on first use
func WithS3(api ObjectGetter) Option { return func(r *Reader) { r.s3 = api } }

// WithMaxBytes overrides DefaultMaxBytes; n <= 0 keeps the default
func WithMaxBytes(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.max = n
		}
	}
}

// New builds a Reader
func New(opts ...Option) *Reader {
	r := &Reader{
		newS3: defaultS3,
		max:   DefaultMaxBytes,
		log:   *logger.Named("termsource"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func defaultS3(ctx context.Context) (ObjectGetter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "load aws config")
	}
	// path style keeps custom endpoints (localstack, minio) working
	return s3.NewFromConfig(cfg, func(o *s3.Options) { o.UsePathStyle = true }), nil
}

// Read loads location (a path or s3://bucket/key) and returns its rows in order
// sheet selects an xlsx worksheet; empty means the first one
func (r *Reader) Read(ctx context.Context, location, sheet string) ([]Record, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, perr.InvalidArgf("term source location is empty")
	}

	b, name, err := r.load(ctx, location)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		rows, err = xlsxRows(b, sheet)
	case ".csv":
		rows, err = csvRows(b)
	default:
		return nil, perr.WithField(perr.Validationf("unsupported term source extension %q", ext), location)
	}
	if err != nil {
		return nil, perr.WithField(err, location)
	}

	recs := records(rows)
	r.log.Info().Str("source", location).Int("records", len(recs)).Msg("read glossary terms")
	return recs, nil
}

func (r *Reader) load(ctx context.Context, location string) ([]byte, string, error) {
	if rest, ok := strings.CutPrefix(location, s3Scheme); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return nil, "", perr.InvalidArgf("s3 location %q needs a bucket and a key", location)
		}
		b, err := r.fetchS3(ctx, bucket, key)
		return b, key, err
	}

	f, err := os.Open(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", perr.WithField(perr.Wrapf(err, perr.ErrorCodeNotFound, "term source %s does not exist", location), location)
		}
		return nil, "", perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "term source %s is unreadable", location), location)
	}
	defer func() { _ = f.Close() }()

	b, err := r.readCapped(f, location)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeValidation) {
		err = perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "term source %s is unreadable", location), location)
	}
	return b, location, err
}

// readCapped reads all of rd; more than r.max bytes is a validation error, never a silent cut
func (r *Reader) readCapped(rd io.Reader, location string) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(rd, r.max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > r.max {
		return nil, perr.WithField(perr.Validationf("term source %s exceeds %d bytes", location, r.max), location)
	}
	return b, nil
}

// records turns raw rows into header keyed maps
// fully empty rows are skipped; short rows are padded with ""
func records(rows [][]string) []Record {
	out := []Record{}
	if len(rows) == 0 {
		return out
	}
	// a Caser carries state, so one per read
	lower := cases.Lower(language.Und)
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = lower.String(h)
	}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if _, dup := rec[h]; dup {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func xlsxRows(b []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "not a readable spreadsheet")
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, perr.Validationf("spreadsheet has no worksheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "read worksheet %q", sheet)
	}
	return rows, nil
}

func csvRows(b []byte) ([][]string, error) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "not a readable csv file")
	}
	return rows, nil
}

func (r *Reader) fetchS3(ctx context.Context, bucket, key string) ([]byte, error) {
	if r.s3 == nil {
		api, err := r.newS3(ctx)
		if err != nil {
			return nil, err
		}
		r.s3 = api
	}
	out, err := r.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, classifyS3(err, bucket, key)
	}
	defer func() {
		if cerr := out.Body.Close(); cerr != nil {
			r.log.Error().Err(cerr).Str("bucket", bucket).Str("key", key).Msg("s3 close body failed")
		}
	}()
	b, err := r.readCapped(out.Body, s3Scheme+bucket+"/"+key)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeValidation) {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "read s3://%s/%s", bucket, key)
	}
	return b, err
}
