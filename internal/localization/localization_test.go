package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	l, err := Default()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "bn"}, l.Languages())
}

func TestRender_FallsBackToEnglish(t *testing.T) {
	l, err := Default()
	require.NoError(t, err)

	data := map[string]string{"Name": "Alice", "Title": "Theft", "Status": "Resolved", "ComplaintID": "c-1"}

	subject, err := l.Render("bn", "complaint_status_changed.subject", data)
	require.NoError(t, err)
	assert.Contains(t, subject, "Theft")

	body, err := l.Render("bn", "complaint_status_changed.body", data)
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Alice")
	assert.Contains(t, body, "is now Resolved")
}

func TestRender_MissingKeyAndField(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json": {Data: []byte(`{"greet": "hi {{.Name}}"}`)},
	}
	l, err := NewLocalizer(fsys)
	require.NoError(t, err)

	_, err = l.Render("en", "nope", nil)
	assert.Error(t, err)

	_, err = l.Render("en", "greet", map[string]string{})
	assert.Error(t, err)

	out, err := l.Render("en", "greet", map[string]string{"Name": "Bo"})
	require.NoError(t, err)
	assert.Equal(t, "hi Bo", out)
}

func TestGetString_ReturnsKeyWhenMissing(t *testing.T) {
	l, err := NewLocalizer(fstest.MapFS{"en.json": {Data: []byte(`{"a": "A"}`)}})
	require.NoError(t, err)

	assert.Equal(t, "A", l.GetString("fr", "a"))
	assert.Equal(t, "b", l.GetString("en", "b"))
}

func TestNewLocalizer_BadJSON(t *testing.T) {
	_, err := NewLocalizer(fstest.MapFS{"en.json": {Data: []byte(`{`)}})
	assert.Error(t, err)
}
