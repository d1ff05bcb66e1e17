package atmos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFormID(t *testing.T) {
	page := `<input type="hidden" name="formId" value="areallyawesomeformid" id="authenticate_formId"/>`

	id, err := ExtractFormID([]byte(page))
	require.NoError(t, err)
	require.Equal(t, "areallyawesomeformid", id)
}

func TestExtractFormID_ByFieldName(t *testing.T) {
	page := `<html><body><form action="/authenticate.html">
<input type="hidden" name="formId" value=" abc123 "/>
</form></body></html>`

	id, err := ExtractFormID([]byte(page))
	require.NoError(t, err)
	require.Equal(t, "abc123", id)
}

func TestExtractFormID_Missing(t *testing.T) {
	_, err := ExtractFormID([]byte("<html>no form id here</html>"))
	require.ErrorIs(t, err, ErrFormIDNotFound)
}

func TestExtractFormID_EmptyValue(t *testing.T) {
	_, err := ExtractFormID([]byte(`<input id="authenticate_formId" value=""/>`))
	require.ErrorIs(t, err, ErrFormIDNotFound)
}
