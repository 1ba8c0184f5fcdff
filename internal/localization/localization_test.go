package localization_test

import (
	"civicdesk/backend/internal/localization"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EmbeddedCatalogs(t *testing.T) {
	l := localization.Default()

	assert.ElementsMatch(t, []string{"en", "uk"}, l.Languages())
	assert.Equal(t, "Complaint not found.", l.GetString("en", "complaint_not_found"))
	assert.Equal(t, "Скаргу не знайдено.", l.GetString("uk", "complaint_not_found"))
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"i18n/en.json": {Data: []byte(`{"greeting":"Hello","only_en":"English only"}`)},
		"i18n/uk.json": {Data: []byte(`{"greeting":"Привіт"}`)},
	}
	l, err := localization.NewLocalizerFS(fsys, "i18n")
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "greeting"))
	assert.Equal(t, "English only", l.GetString("uk", "only_en"))
	assert.Equal(t, "Hello", l.GetString("de", "greeting"))
	assert.Equal(t, "missing_key", l.GetString("uk", "missing_key"))
}

func TestFormat(t *testing.T) {
	l := localization.Default()
	assert.Equal(t, "pending: 3", l.Format("en", "stats_line", "pending", 3))
}

func TestNewLocalizer_FromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"k":"v"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	l, err := localization.NewLocalizer(dir)
	require.NoError(t, err)
	assert.Equal(t, "v", l.GetString("en", "k"))

	_, err = localization.NewLocalizer(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0o600))
	_, err = localization.NewLocalizer(dir)
	assert.Error(t, err)
}
