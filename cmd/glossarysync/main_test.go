package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"glossarysync/internal/adapters/purview"
	"glossarysync/internal/adapters/purview/fake"
	"glossarysync/internal/platform/testkit"
	"glossarysync/internal/services/glossary/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const termsCSV = "Name,Description,Status,Domain\n" +
	"Revenue,Income from sales,Draft,Finance\n" +
	"Churn,Customers lost,Published,Sales\n" +
	"Revenue,Income from sales,Draft,Finance\n"

// mockEnv points the CLI at an in-process catalog and token endpoint
func mockEnv(t *testing.T) *fake.Catalog {
	t.Helper()
	cat := fake.New(fake.Credentials{ClientID: "app-1", ClientSecret: "s3cr3t"})
	cat.SeedDomain("Finance", "dom-123")
	cat.SeedDomain("Sales", "dom-999")
	srv := httptest.NewServer(cat.Handler())
	t.Cleanup(srv.Close)

	for k, v := range map[string]string{
		"PURVIEW_TENANT_ID":         "contoso",
		"PURVIEW_CLIENT_ID":         "app-1",
		"PURVIEW_CLIENT_SECRET":     "s3cr3t",
		"PURVIEW_CLIENT_SECRET_REF": "",
		"PURVIEW_AUTHORITY_URL":     srv.URL,
		"PURVIEW_CATALOG_URL":       srv.URL + fake.CatalogPath,
		"GLOSSARY_SOURCE":           "",
		"GLOSSARY_DRY_RUN":          "",
		"LEDGER_PG_DBURL":           "",
	} {
		t.Setenv(k, v)
	}
	return cat
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUpload_EndToEnd(t *testing.T) {
	cat := mockEnv(t)
	path := testkit.WriteFile(t, "terms.csv", []byte(termsCSV))

	code, out, stderr := runCLI(t, "upload", "--file", path)
	require.Equal(t, 0, code, stderr)

	var rep domain.UploadReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Len(t, rep.Created, 2)
	assert.Len(t, rep.Skipped, 1)
	assert.Equal(t, 2, cat.Calls(purview.OpCreateTerm))

	code, out, _ = runCLI(t, "upload", "--file", path)
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Empty(t, rep.Created)
	assert.Len(t, rep.Skipped, 3)
	assert.Equal(t, 2, cat.Calls(purview.OpCreateTerm))
}

func TestUpload_DryRun(t *testing.T) {
	cat := mockEnv(t)
	path := testkit.WriteFile(t, "terms.csv", []byte(termsCSV))

	code, out, stderr := runCLI(t, "upload", "--file", path, "--dry-run")
	require.Equal(t, 0, code, stderr)
	var rep domain.UploadReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.DryRun)
	assert.Len(t, rep.Planned, 2)
	assert.Zero(t, cat.Calls(purview.OpCreateTerm))
}

func TestUpload_SourceFromConfigFile(t *testing.T) {
	cat := mockEnv(t)
	path := testkit.WriteFile(t, "terms.csv", []byte(termsCSV))
	cfg := testkit.WriteFile(t, "glossarysync.yaml", []byte("source: "+path+"\ndry_run: true\n"))

	code, _, stderr := runCLI(t, "--config", cfg, "upload")
	require.Equal(t, 0, code, stderr)
	assert.Zero(t, cat.Calls(purview.OpCreateTerm))

	t.Setenv("GLOSSARY_DRY_RUN", "false")
	code, _, stderr = runCLI(t, "--config", cfg, "upload")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, 2, cat.Calls(purview.OpCreateTerm), "env overrides the yaml file")
}

func TestUpload_UnknownDomainFails(t *testing.T) {
	cat := mockEnv(t)
	path := testkit.WriteFile(t, "terms.csv", []byte("name,description,status,domain\nLeads,,Draft,Marketing\n"))

	code, _, stderr := runCLI(t, "upload", "-f", path, "--log-format", "json")
	assert.Equal(t, 1, code)
	testkit.MustContain(t, stderr, `"code":"domain_unresolved"`)
	testkit.MustContain(t, stderr, "Marketing")
	assert.Zero(t, cat.Calls(purview.OpCreateTerm))
}

func TestTerms_CreateGetDelete(t *testing.T) {
	cat := mockEnv(t)

	code, out, stderr := runCLI(t, "terms", "create", "--name", "Revenue", "--description", "Income", "--domain", "Finance")
	require.Equal(t, 0, code, stderr)
	var created struct {
		Created bool        `json:"created"`
		Term    domain.Term `json:"term"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.True(t, created.Created)
	assert.Equal(t, "dom-123", created.Term.Domain)
	assert.Equal(t, "Draft", created.Term.Status)

	code, out, _ = runCLI(t, "terms", "create", "--name", "Revenue", "--domain", "Finance")
	require.Equal(t, 0, code)
	testkit.MustContain(t, out, `"created": false`)

	code, out, _ = runCLI(t, "terms", "get", "--name", "Revenue")
	require.Equal(t, 0, code)
	var got []domain.Term
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, created.Term.ID, got[0].ID)

	code, out, _ = runCLI(t, "terms", "delete", "--id", created.Term.ID)
	require.Equal(t, 0, code)
	testkit.MustContain(t, out, `"outcome": "deleted"`)
	assert.Empty(t, cat.Terms())
}

func TestTerms_GuardsRunBeforeAnyRequest(t *testing.T) {
	cat := mockEnv(t)

	for _, args := range [][]string{
		{"terms", "get"},
		{"terms", "get", "--id", "x", "--name", "y"},
		{"terms", "delete-all"},
	} {
		code, _, stderr := runCLI(t, args...)
		assert.Equal(t, 1, code, "%v", args)
		testkit.MustContain(t, stderr, "invalid_argument")
	}
	assert.Zero(t, cat.Calls("token"))
}

func TestTerms_ListAndDeleteAll(t *testing.T) {
	cat := mockEnv(t)
	cat.SeedTerm(purview.Term{Name: "A", Domain: "dom-123"})
	b := cat.SeedTerm(purview.Term{Name: "B", Domain: "dom-999"})
	cat.ForceDelete(b.ID, 403)

	code, out, _ := runCLI(t, "terms", "list")
	require.Equal(t, 0, code)
	var ts []domain.Term
	require.NoError(t, json.Unmarshal([]byte(out), &ts))
	assert.Len(t, ts, 2)

	code, out, stderr := runCLI(t, "terms", "delete-all", "--yes")
	require.Equal(t, 0, code, stderr)
	var rep domain.DeleteAllReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 1, rep.Deleted)
	assert.Equal(t, 1, rep.Forbidden)
}

func TestDomainsList(t *testing.T) {
	mockEnv(t)
	code, out, _ := runCLI(t, "domains", "list")
	require.Equal(t, 0, code)
	var idx map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &idx))
	assert.Equal(t, map[string]string{"Finance": "dom-123", "Sales": "dom-999"}, idx)
}

func TestBadSecretIsUnauthorized(t *testing.T) {
	mockEnv(t)
	t.Setenv("PURVIEW_CLIENT_SECRET", "wrong")

	code, out, stderr := runCLI(t, "domains", "list")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	testkit.MustContain(t, stderr, "unauthorized")
}

func TestRunsList_RequiresLedger(t *testing.T) {
	mockEnv(t)
	code, _, stderr := runCLI(t, "runs", "list")
	assert.Equal(t, 1, code)
	testkit.MustContain(t, stderr, "LEDGER_PG_DBURL")
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	require.Equal(t, 0, code)
	testkit.MustContain(t, out, `"service": "glossarysync"`)
}
