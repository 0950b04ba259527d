package validation

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/icco/moviq/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWatchlistBlob(t *testing.T) {
	tests := []struct {
		name    string
		blob    string
		wantErr bool
	}{
		{name: "empty array", blob: `[]`},
		{name: "numeric id", blob: `[{"id":27205,"title":"Inception","image":null,"type":"movie","rating":8.4,"year":"2010","watched":false,"addedAt":"2024-01-01T00:00:00.000Z"}]`},
		{name: "string id and extra fields", blob: `[{"id":"abc","type":"tv","extra":true}]`},
		{name: "missing id", blob: `[{"title":"x"}]`, wantErr: true},
		{name: "object instead of array", blob: `{"id":1}`, wantErr: true},
		{name: "wrong watched type", blob: `[{"id":1,"watched":"yes"}]`, wantErr: true},
		{name: "not json", blob: `[{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWatchlistBlob([]byte(tt.blob))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage("")
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	p, err = ParsePage("3")
	require.NoError(t, err)
	assert.Equal(t, 3, p)

	for _, bad := range []string{"0", "-1", "501", "two"} {
		_, err := ParsePage(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseYear(t *testing.T) {
	y, err := ParseYear("1999")
	require.NoError(t, err)
	assert.Equal(t, 1999, y)

	y, err = ParseYear("")
	require.NoError(t, err)
	assert.Zero(t, y)

	_, err = ParseYear("99")
	assert.Error(t, err)
}

func TestParseTitleType(t *testing.T) {
	mt, err := ParseTitleType("tv")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTV, mt)

	_, err = ParseTitleType("person")
	assert.Error(t, err)
}

func TestParseMediaType(t *testing.T) {
	mt, err := ParseMediaType("multi", models.MediaMovie, models.MediaMulti)
	require.NoError(t, err)
	assert.Equal(t, models.MediaMulti, mt)

	_, err = ParseMediaType("person", models.MediaMovie)
	assert.Error(t, err)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("boom"), http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["error"])
}
