package termsource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	perr "glossarysync/internal/platform/errors"
	kit "glossarysync/internal/platform/testkit"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, sheets map[string][][]any, order ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	p := filepath.Join(t.TempDir(), "Enterprise-Glossary-Terms.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestRead_XLSX(t *testing.T) {
	p := writeXLSX(t, map[string][][]any{
		"Terms": {
			{"Name", "DESCRIPTION", "Status", "Domain"},
			{"Revenue", " Income, before costs ", "Draft", "Finance"},
			{},
			{"Churn", "Lost customers", "Published"},
		},
		"Other": {{"name"}, {"ignored"}},
	}, "Terms", "Other")

	recs, err := New().Read(context.Background(), p, "")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{"name": "Revenue", "description": " Income, before costs ", "status": "Draft", "domain": "Finance"}, recs[0])
	assert.Equal(t, "", recs[1]["domain"], "short rows are padded")

	other, err := New().Read(context.Background(), p, "Other")
	require.NoError(t, err)
	assert.Equal(t, []Record{{"name": "ignored"}}, other)

	_, err = New().Read(context.Background(), p, "Missing")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
}

func TestRead_CSV_UnicodeHeaders(t *testing.T) {
	p := kit.WriteFile(t, "terms.csv", []byte("\xef\xbb\xbfNAME,ÉTAT,Domain\nRevenue,Draft,Finance\n,,\n"))
	recs, err := New().Read(context.Background(), p, "")
	require.NoError(t, err)
	assert.Equal(t, []Record{{"name": "Revenue", "état": "Draft", "domain": "Finance"}}, recs)
}

func TestRead_Errors(t *testing.T) {
	ctx := context.Background()
	r := New()

	_, err := r.Read(ctx, filepath.Join(t.TempDir(), "nope.xlsx"), "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "missing: %v", err)

	bad := kit.WriteFile(t, "bad.xlsx", []byte("this is not a zip"))
	_, err = r.Read(ctx, bad, "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation), "corrupt: %v", err)

	txt := kit.WriteFile(t, "terms.txt", []byte("name\nx\n"))
	_, err = r.Read(ctx, txt, "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation), "extension: %v", err)

	badCSV := kit.WriteFile(t, "terms.csv", []byte("name\n\"unterminated\n"))
	_, err = r.Read(ctx, badCSV, "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation), "csv: %v", err)

	_, err = r.Read(ctx, "  ", "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

type stubS3 struct {
	body   []byte
	err    error
	bucket string
	key    string
}

func (s *stubS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	s.bucket, s.key = aws.ToString(in.Bucket), aws.ToString(in.Key)
	if s.err != nil {
		return nil, s.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(s.body))}, nil
}

func TestRead_S3(t *testing.T) {
	api := &stubS3{body: []byte("name,description,status,domain\nRevenue,Income,Draft,Finance\n")}
	recs, err := New(WithS3(api)).Read(context.Background(), "s3://glossary/exports/terms.csv", "")
	require.NoError(t, err)
	assert.Equal(t, "glossary", api.bucket)
	assert.Equal(t, "exports/terms.csv", api.key)
	assert.Len(t, recs, 1)
}

func TestRead_OverCapIsValidation(t *testing.T) {
	ctx := context.Background()
	body := []byte("name,description,status,domain\nRevenue,Income,Draft,Finance\nCost,Spend,Draft,Finance\n")
	limit := int64(len(body) - 10)

	api := &stubS3{body: body}
	_, err := New(WithS3(api), WithMaxBytes(limit)).Read(ctx, "s3://glossary/terms.csv", "")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	assert.Contains(t, err.Error(), "exceeds")

	local := kit.WriteFile(t, "terms.csv", body)
	_, err = New(WithMaxBytes(limit)).Read(ctx, local, "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))

	recs, err := New(WithS3(&stubS3{body: body}), WithMaxBytes(int64(len(body)))).Read(ctx, "s3://glossary/terms.csv", "")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestRead_S3Errors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		err  error
		code perr.ErrorCode
	}{
		{&types.NoSuchKey{}, perr.ErrorCodeNotFound},
		{&types.NoSuchBucket{}, perr.ErrorCodeNotFound},
		{errors.New("connection reset"), perr.ErrorCodeUnavailable},
	}
	for _, c := range cases {
		_, err := New(WithS3(&stubS3{err: c.err})).Read(ctx, "s3://b/k.xlsx", "")
		assert.Equal(t, c.code, perr.CodeOf(err), "%v", c.err)
	}

	_, err := New(WithS3(&stubS3{})).Read(ctx, "s3://bucket-only", "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestRecords_DuplicateAndBlankHeaders(t *testing.T) {
	got := records([][]string{{"Name", "", "NAME"}, {"a", "b", "c"}})
	assert.Equal(t, []Record{{"name": "a"}}, got)
	assert.Empty(t, records(nil))
}
