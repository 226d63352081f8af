package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const salesCSV = "city,amount,product\nA,10,x\nA,20,y\nB,5,x\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDescribe(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	out, err := run(t, "describe", path, "--head", "2", "--tail", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "There are 3 rows and 3 columns in the dataset")
	assert.Contains(t, out, "11.666667")
	assert.Contains(t, out, "Top 2 Rows")
	assert.Contains(t, out, "Bottom 1 Rows")
	assert.Regexp(t, `amount\s+int64`, out)
	assert.Contains(t, out, "['city', 'amount', 'product']")
}

func TestCount(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	out, err := run(t, "count", path, "--column", "city", "--top", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "count")
	assert.Contains(t, out, "A")
	assert.NotContains(t, out, "B")
}

func TestGroup(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	out, err := run(t, "group", path, "--by", "city", "--column", "amount", "--op", "sum")
	require.NoError(t, err)
	assert.Contains(t, out, "newcol")
	assert.Contains(t, out, "30")

	_, err = run(t, "group", path, "--by", "city", "--column", "product", "--op", "sum")
	require.Error(t, err)
	assert.Equal(t, "The selected column 'product' is not numeric. 'sum' operation cannot be applied.", err.Error())
}

func TestChart(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	out, err := run(t, "chart", path, "--by", "city", "--column", "amount", "--kind", "BAR", "--x", "city", "--y", "newcol")
	require.NoError(t, err)

	assert.Equal(t, "bar", gjson.Get(out, "data.0.type").String())
	assert.Equal(t, "[30,5]", gjson.Get(out, "data.0.y|@ugly").String())
}

func TestUnsupportedFile(t *testing.T) {
	path := writeFile(t, "notes.txt", "hello")

	_, err := run(t, "describe", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file")
}
