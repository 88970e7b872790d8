package processor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/allanpk716/docx_hf_replacer/internal/archive"
	"github.com/allanpk716/docx_hf_replacer/internal/config"
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
	"github.com/allanpk716/docx_hf_replacer/internal/testutil"
	"github.com/allanpk716/docx_hf_replacer/pkg/docx"
)

func newTestBatch(t *testing.T) (*BatchProcessor, *archive.Store) {
	t.Helper()
	dir := t.TempDir()
	logger := zaptest.NewLogger(t)
	store := archive.NewStore(config.Storage{
		UploadDir:    filepath.Join(dir, "uploads"),
		ProcessedDir: filepath.Join(dir, "processed"),
	}, logger)
	return NewBatchProcessor(store, NewDocumentProcessor(NewDocxLoader(), logger), logger), store
}

func upload(t *testing.T, store *archive.Store, name string, entries ...testutil.Entry) string {
	t.Helper()
	storedName, err := store.SaveUpload(name, bytes.NewReader(testutil.BuildZip(entries...)))
	require.NoError(t, err)
	return storedName
}

func headerDoc(text string) []byte {
	return testutil.BuildDocx(testutil.Document{
		Sections: []testutil.Section{{Header: testutil.P(text)}},
	})
}

func TestBatchProcessor_Process(t *testing.T) {
	bp, store := newTestBatch(t)
	storedName := upload(t, store, "batch.zip",
		testutil.Entry{Name: "a.docx", Data: headerDoc("Company: Acme")},
		testutil.Entry{Name: "docs/b.docx", Data: headerDoc("Acme Ltd")},
		testutil.Entry{Name: "docs/~$b.docx", Data: []byte("lock")},
		testutil.Entry{Name: "readme.txt", Data: []byte("hello")},
	)
	rules := domain.RuleSet{Header: []domain.ReplacementRule{paragraphRule("Acme", "Globex")}}

	result, err := bp.Process(context.Background(), storedName, rules, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "batch.zip", result.ArchiveName)
	assert.Equal(t, "batch_processed.zip", result.DownloadName)
	assert.Equal(t, 2, result.Replacements())
	require.Len(t, result.Documents, 2)
	assert.Equal(t, "a.docx", result.Documents[0].Name)
	assert.Equal(t, "docs/b.docx", result.Documents[1].Name)
	assert.FileExists(t, result.Documents[1].OutputPath)

	contents, names, err := testutil.ReadZip(result.Data)
	require.NoError(t, err)
	sort.Strings(names)
	assert.Equal(t, []string{"a.docx", "b.docx"}, names)

	doc, err := docx.Open(contents["a.docx"])
	require.NoError(t, err)
	assert.Equal(t, "Company: Globex", doc.Sections()[0].Header().Text())

	doc, err = docx.Open(contents["b.docx"])
	require.NoError(t, err)
	assert.Equal(t, "Globex Ltd", doc.Sections()[0].Header().Text())
}

func TestBatchProcessor_SelectedSubset(t *testing.T) {
	bp, store := newTestBatch(t)
	storedName := upload(t, store, "batch.zip",
		testutil.Entry{Name: "a.docx", Data: headerDoc("Acme")},
		testutil.Entry{Name: "b.docx", Data: headerDoc("Acme")},
	)
	rules := domain.RuleSet{Header: []domain.ReplacementRule{paragraphRule("Acme", "Globex")}}

	result, err := bp.Process(context.Background(), storedName, rules, []string{"b.docx"})
	require.NoError(t, err)

	_, names, err := testutil.ReadZip(result.Data)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.docx"}, names)
}

func TestBatchProcessor_EmptyArchive(t *testing.T) {
	bp, store := newTestBatch(t)
	storedName := upload(t, store, "empty.zip", testutil.Entry{Name: "notes.txt", Data: []byte("x")})

	result, err := bp.Process(context.Background(), storedName, domain.RuleSet{}, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Documents)
	_, names, err := testutil.ReadZip(result.Data)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestBatchProcessor_UnknownArchive(t *testing.T) {
	bp, _ := newTestBatch(t)

	_, err := bp.Process(context.Background(), "missing.zip", domain.RuleSet{}, nil)
	assert.ErrorIs(t, err, domain.ErrArchiveNotFound)

	_, err = bp.Process(context.Background(), "../etc/passwd.zip", domain.RuleSet{}, nil)
	assert.ErrorIs(t, err, domain.ErrArchiveNotFound)
}

func TestBatchProcessor_AbortsOnBrokenDocument(t *testing.T) {
	bp, store := newTestBatch(t)
	storedName := upload(t, store, "batch.zip",
		testutil.Entry{Name: "a.docx", Data: headerDoc("Acme")},
		testutil.Entry{Name: "broken.docx", Data: []byte("not a document")},
	)

	_, err := bp.Process(context.Background(), storedName, domain.RuleSet{}, nil)
	require.Error(t, err)

	var docErr *domain.DocumentError
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, "broken.docx", docErr.Member)
}

func TestDocumentMembers(t *testing.T) {
	data := testutil.BuildZip(
		testutil.Entry{Name: "docs/", Data: nil},
		testutil.Entry{Name: "docs/a.docx", Data: []byte("a")},
		testutil.Entry{Name: "__MACOSX/docs/._a.docx", Data: []byte("x")},
		testutil.Entry{Name: "B.DOCX", Data: []byte("b")},
		testutil.Entry{Name: "c.doc", Data: []byte("c")},
	)
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, file := range documentMembers(reader.File, nil) {
		names = append(names, file.Name)
	}
	assert.Equal(t, []string{"docs/a.docx", "B.DOCX"}, names)
}
