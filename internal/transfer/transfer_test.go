package transfer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/storage"
	"github.com/dpshade/prompt-vault/internal/vault"
)

func emptyVault() *vault.Vault {
	return vault.New(storage.NewMemoryBackend())
}

func TestExportIsIndentedArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil))
	assert.Equal(t, "[]", buf.String())

	buf.Reset()
	prompts := []models.CustomPrompt{{ID: "c1", Tab: "T", Section: "S", Category: "C", Text: "hi", CreatedAt: 42}}
	require.NoError(t, Export(&buf, prompts))
	assert.Contains(t, buf.String(), "\n  {\n    \"id\": \"c1\"")
	assert.Contains(t, buf.String(), `"createdAt": 42`)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := emptyVault()
	src.AddCustom(models.CustomInput{Tab: "Work", Section: "Email", Category: "Follow-up", Text: "Nudge the client"})
	src.AddCustom(models.CustomInput{Tab: "Home", Section: "Cooking", Category: "Dinner", Text: "Plan a menu"})

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, src.CustomPrompts()))

	dst := emptyVault()
	res, err := Import(&buf, dst, DefaultDefaults())
	require.NoError(t, err)
	assert.Len(t, res.Added, 2)

	ignoreIdentity := cmpopts.IgnoreFields(models.CustomPrompt{}, "ID", "CreatedAt")
	if diff := cmp.Diff(src.CustomPrompts(), dst.CustomPrompts(), ignoreIdentity); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportWhitespaceTextAddsNothing(t *testing.T) {
	v := emptyVault()
	res, err := Import(strings.NewReader(`[{"text":"  "}]`), v, DefaultDefaults())
	require.NoError(t, err)

	assert.Empty(t, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, v.CustomPrompts())
}

func TestImportAppliesDefaults(t *testing.T) {
	v := emptyVault()
	res, err := Import(strings.NewReader(`[{"tab":"X","text":"Hello"}]`), v, DefaultDefaults())
	require.NoError(t, err)
	require.Len(t, res.Added, 1)

	got := v.CustomPrompts()
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].Tab)
	assert.Equal(t, "Mine Prompter", got[0].Section)
	assert.Equal(t, "General", got[0].Category)
	assert.Equal(t, "Hello", got[0].Text)
	assert.NotEmpty(t, got[0].ID)
}

func TestImportNonArrayIsRejected(t *testing.T) {
	v := emptyVault()
	res, err := Import(strings.NewReader(`{"text":"Hello"}`), v, DefaultDefaults())
	require.NoError(t, err)
	assert.True(t, res.Rejected)
	assert.Empty(t, v.CustomPrompts())
}

func TestImportMalformedJSON(t *testing.T) {
	v := emptyVault()
	_, err := Import(strings.NewReader(`[{"text":`), v, DefaultDefaults())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFormat))
	assert.Empty(t, v.CustomPrompts())
}

func TestImportPartiallyValid(t *testing.T) {
	v := emptyVault()
	v.AddCustom(models.CustomInput{Text: "existing"})

	doc := `[
		{"text": "first", "section": null},
		"not an object",
		{"tab": 7, "category": true, "text": 12},
		{"tab": "Y"},
		{"text": "  padded  "}
	]`
	res, err := Import(strings.NewReader(doc), v, DefaultDefaults())
	require.NoError(t, err)
	assert.Len(t, res.Added, 3)
	assert.Equal(t, 2, res.Skipped)

	got := v.CustomPrompts()
	require.Len(t, got, 4)
	assert.Equal(t, "existing", got[0].Text)
	assert.Equal(t, "Mine Prompter", got[1].Section)
	assert.Equal(t, "7", got[2].Tab)
	assert.Equal(t, "true", got[2].Category)
	assert.Equal(t, "12", got[2].Text)
	assert.Equal(t, "  padded  ", got[3].Text)
}

func TestImportIsAdditive(t *testing.T) {
	v := emptyVault()
	doc := `[{"text":"same"}]`
	for i := 0; i < 2; i++ {
		_, err := Import(strings.NewReader(doc), v, DefaultDefaults())
		require.NoError(t, err)
	}
	assert.Len(t, v.CustomPrompts(), 2)
}

func TestExportAndImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultExportFile)

	written, err := ExportFile(path, []models.CustomPrompt{{ID: "c1", Text: "hi", Tab: "T", Section: "S", Category: "C"}})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n"))

	v := emptyVault()
	res, err := ImportFile(path, v, DefaultDefaults())
	require.NoError(t, err)
	assert.Len(t, res.Added, 1)

	_, err = ImportFile(filepath.Join(dir, "missing.json"), v, DefaultDefaults())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileNotFound))
}
