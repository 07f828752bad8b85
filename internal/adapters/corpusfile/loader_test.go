package corpusfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodRecord = `{
	"vendor": "Apache Software Foundation",
	"vendor_id": "apache",
	"product": "HTTP Server",
	"product_id": "httpd",
	"category": "web",
	"subcategory": "http-server",
	"all_versions": [
		{
			"name": "server_header",
			"pattern": "Server: Apache/([0-9.]+)",
			"version_group": 1,
			"priority": 150,
			"confidence": 0.9
		}
	],
	"versions": {
		"2.4.x": [
			{
				"name": "v24_banner",
				"pattern": "Apache/2\\.4\\.([0-9]+)",
				"version_group": 1,
				"priority": 140,
				"confidence": 0.85
			}
		]
	}
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadRecord(t *testing.T) {
	loader := NewLoader(nil)

	entry, issues := loader.LoadRecord([]byte(goodRecord), "apache/httpd.json")
	require.Empty(t, issues)
	require.NotNil(t, entry)

	assert.Equal(t, "apache", entry.VendorID)
	assert.Equal(t, "httpd", entry.ProductID)
	assert.Equal(t, "http-server", entry.Subcategory)
	require.Len(t, entry.GenericPatterns, 1)
	assert.Equal(t, 1, entry.GenericPatterns[0].VersionGroup)
	require.Len(t, entry.VersionedPatterns["2.4.x"], 1)
	assert.Equal(t, 2, entry.RuleCount())
}

func TestLoadRecordRejections(t *testing.T) {
	loader := NewLoader(nil)

	tests := []struct {
		name    string
		record  string
		message string
	}{
		{
			name:    "invalid JSON",
			record:  `{"vendor": `,
			message: "invalid JSON",
		},
		{
			name:    "missing vendor_id",
			record:  `{"vendor": "A", "product": "B", "product_id": "b", "category": "web"}`,
			message: `missing required field "vendor_id"`,
		},
		{
			name:    "bad category",
			record:  `{"vendor": "A", "vendor_id": "a", "product": "B", "product_id": "b", "category": "saas"}`,
			message: "invalid category",
		},
		{
			name: "rule missing priority",
			record: `{"vendor": "A", "vendor_id": "a", "product": "B", "product_id": "b", "category": "web",
				"all_versions": [{"name": "r", "pattern": "x", "confidence": 0.5}]}`,
			message: `all_versions[0]: missing required field "priority"`,
		},
		{
			name: "rule priority out of range",
			record: `{"vendor": "A", "vendor_id": "a", "product": "B", "product_id": "b", "category": "web",
				"all_versions": [{"name": "r", "pattern": "x", "priority": 500, "confidence": 0.5}]}`,
			message: "priority 500 outside [0,200]",
		},
		{
			name: "rule pattern does not compile",
			record: `{"vendor": "A", "vendor_id": "a", "product": "B", "product_id": "b", "category": "web",
				"all_versions": [{"name": "r", "pattern": "([broken", "priority": 100, "confidence": 0.5}]}`,
			message: "does not compile",
		},
		{
			name: "versioned rule rejects whole record",
			record: `{"vendor": "A", "vendor_id": "a", "product": "B", "product_id": "b", "category": "web",
				"all_versions": [{"name": "ok", "pattern": "x", "priority": 100, "confidence": 0.5}],
				"versions": {"1.x": [{"name": "bad", "pattern": "([", "priority": 100, "confidence": 0.5}]}}`,
			message: "versions[1.x][0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, issues := loader.LoadRecord([]byte(tt.record), "test.json")
			assert.Nil(t, entry)
			require.Len(t, issues, 1)
			assert.Contains(t, issues[0].Message, tt.message)
			assert.Equal(t, "test.json", issues[0].Location)
		})
	}
}

func TestLoadRecordExplicitZeroPriority(t *testing.T) {
	loader := NewLoader(nil)

	record := `{"vendor": "A", "vendor_id": "a", "product": "B", "product_id": "b", "category": "web",
		"all_versions": [{"name": "r", "pattern": "x", "priority": 0, "confidence": 0.0}]}`

	entry, issues := loader.LoadRecord([]byte(record), "test.json")
	require.Empty(t, issues)
	require.NotNil(t, entry)
	assert.Equal(t, 0, entry.GenericPatterns[0].Priority)
	assert.Equal(t, 0.0, entry.GenericPatterns[0].Confidence)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "apache/httpd.json", goodRecord)
	writeFile(t, dir, "broken/bad.json", `{"vendor": "X"`)
	writeFile(t, dir, "notes/README.md", "not a corpus file")

	loader := NewLoader(nil)
	c, issues, err := loader.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Location, "bad.json")
}

func TestLoadDirDuplicateKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/httpd.json", goodRecord)
	writeFile(t, dir, "b/httpd-copy.json", goodRecord)

	loader := NewLoader(nil)
	c, issues, err := loader.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "duplicate")
}

func TestLoadDirMissingRoot(t *testing.T) {
	loader := NewLoader(nil)

	_, _, err := loader.LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDirRootIsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.json", goodRecord)

	loader := NewLoader(nil)
	_, _, err := loader.LoadDir(filepath.Join(dir, "file.json"))
	assert.Error(t, err)
}
