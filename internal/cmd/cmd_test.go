package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/docx_hf_replacer/internal/testutil"
	"github.com/allanpk716/docx_hf_replacer/pkg/docx"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func headerDocx(text string) []byte {
	return testutil.BuildDocx(testutil.Document{
		Sections: []testutil.Section{{Header: testutil.P(text)}},
	})
}

// setupWorkspace 创建配置文件和规则文件，返回工作目录
func setupWorkspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()

	configYAML := fmt.Sprintf(`project_name: test
storage:
  upload_dir: %q
  processed_dir: %q
log_level: warn
`, filepath.Join(ws, "uploads"), filepath.Join(ws, "processed"))
	writeFile(t, filepath.Join(ws, "config.yaml"), []byte(configYAML))

	rulesYAML := `header_rules:
  - element_type: Paragraph
    old_text: Acme
    new_text: Globex
    font_name: Arial
    font_size: 12
    bold: true
`
	writeFile(t, filepath.Join(ws, "rules.yaml"), []byte(rulesYAML))
	return ws
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateArgs(t *testing.T) {
	ws := t.TempDir()
	zipPath := filepath.Join(ws, "batch.zip")
	writeFile(t, zipPath, []byte("PK"))
	docPath := filepath.Join(ws, "a.docx")
	writeFile(t, docPath, []byte("doc"))

	tests := []struct {
		name       string
		args       ProcessArgs
		wantErr    bool
		wantOutput string
	}{
		{
			name:       "zip input default output",
			args:       ProcessArgs{Input: zipPath, Rules: "rules.yaml"},
			wantOutput: filepath.Join(ws, "batch_processed.zip"),
		},
		{
			name:       "directory input default output",
			args:       ProcessArgs{Input: ws, Rules: "rules.yaml"},
			wantOutput: filepath.Clean(ws) + "_processed.zip",
		},
		{
			name:       "explicit output kept",
			args:       ProcessArgs{Input: zipPath, Rules: "rules.yaml", Output: "out.zip"},
			wantOutput: "out.zip",
		},
		{name: "missing input", args: ProcessArgs{Rules: "rules.yaml"}, wantErr: true},
		{name: "missing rules", args: ProcessArgs{Input: zipPath}, wantErr: true},
		{name: "input does not exist", args: ProcessArgs{Input: filepath.Join(ws, "none.zip"), Rules: "r.yaml"}, wantErr: true},
		{name: "input not a zip", args: ProcessArgs{Input: docPath, Rules: "r.yaml"}, wantErr: true},
		{name: "output not a zip", args: ProcessArgs{Input: zipPath, Rules: "r.yaml", Output: "out.docx"}, wantErr: true},
		{name: "output overwrites input", args: ProcessArgs{Input: zipPath, Rules: "r.yaml", Output: zipPath}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			err := ValidateArgs(&args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, args.Output)
		})
	}
}

func TestFindDocxFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.docx"), []byte("a"))
	writeFile(t, filepath.Join(dir, "sub", "b.DOCX"), []byte("b"))
	writeFile(t, filepath.Join(dir, "sub", "~$b.docx"), []byte("lock"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("n"))

	files, err := FindDocxFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.docx", "sub/b.DOCX"}, files)
}

func TestArchiveNameForDir(t *testing.T) {
	assert.Equal(t, "reports.zip", archiveNameForDir(filepath.Join("data", "reports")+string(filepath.Separator)))
	assert.Equal(t, "documents.zip", archiveNameForDir("."))
}

func TestProcessCommand_Zip(t *testing.T) {
	ws := setupWorkspace(t)
	input := filepath.Join(ws, "batch.zip")
	writeFile(t, input, testutil.BuildZip(
		testutil.Entry{Name: "a.docx", Data: headerDocx("Company: Acme")},
		testutil.Entry{Name: "docs/b.docx", Data: headerDocx("Acme Ltd")},
	))

	out, err := execute(t, "process",
		"--config", filepath.Join(ws, "config.yaml"),
		"--input", input,
		"--rules", filepath.Join(ws, "rules.yaml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 个文档")

	data, err := os.ReadFile(filepath.Join(ws, "batch_processed.zip"))
	require.NoError(t, err)
	contents, names, err := testutil.ReadZip(data)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.docx", "b.docx"}, names)

	doc, err := docx.Open(contents["a.docx"])
	require.NoError(t, err)
	assert.Equal(t, "Company: Globex", doc.Sections()[0].Header().Text())
	assert.Equal(t, docx.Font{Name: "Arial", SizePt: 12, Bold: true},
		doc.Sections()[0].Header().Paragraphs()[0].Runs()[0].Font())
}

func TestProcessCommand_Directory(t *testing.T) {
	ws := setupWorkspace(t)
	input := filepath.Join(ws, "input")
	writeFile(t, filepath.Join(input, "a.docx"), headerDocx("Acme"))
	writeFile(t, filepath.Join(input, "nested", "c.docx"), headerDocx("Acme Corp"))
	output := filepath.Join(ws, "out", "result.zip")

	out, err := execute(t, "process",
		"--config", filepath.Join(ws, "config.yaml"),
		"--input", input,
		"--rules", filepath.Join(ws, "rules.yaml"),
		"--output", output,
		"--select", "nested/c.docx")
	require.NoError(t, err, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	contents, names, err := testutil.ReadZip(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.docx"}, names)

	doc, err := docx.Open(contents["c.docx"])
	require.NoError(t, err)
	assert.Equal(t, "Globex Corp", doc.Sections()[0].Header().Text())
}

func TestProcessCommand_MissingRules(t *testing.T) {
	ws := setupWorkspace(t)
	input := filepath.Join(ws, "batch.zip")
	writeFile(t, input, testutil.BuildZip(testutil.Entry{Name: "a.docx", Data: headerDocx("Acme")}))

	_, err := execute(t, "process",
		"--config", filepath.Join(ws, "config.yaml"),
		"--input", input,
		"--rules", filepath.Join(ws, "missing.yaml"))
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(ws, "batch_processed.zip"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, AppName+" v"+AppVersion+"\n", out)
}

func TestInvalidConfigFile(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, "config.toml")
	writeFile(t, path, []byte("x = 1"))

	_, err := execute(t, "version", "--config", path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	logger, err = NewLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}
