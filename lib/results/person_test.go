package results

import (
	"testing"
	"time"

	"github.com/icco/moviq/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAge(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		birthday string
		deathday string
		want     int
		ok       bool
	}{
		{name: "birthday passed", birthday: "1974-06-01", want: 50, ok: true},
		{name: "birthday today", birthday: "1974-06-15", want: 50, ok: true},
		{name: "birthday tomorrow", birthday: "1974-06-16", want: 49, ok: true},
		{name: "earlier month", birthday: "1974-12-01", want: 49, ok: true},
		{name: "deceased", birthday: "1930-08-05", deathday: "2012-08-25", want: 82, ok: true},
		{name: "deceased before birthday", birthday: "1930-08-26", deathday: "2012-08-25", want: 81, ok: true},
		{name: "no birthday"},
		{name: "garbage birthday", birthday: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Age(tt.birthday, tt.deathday, now)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatBirthday(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "June 1, 1974 (Age 50)", FormatBirthday("1974-06-01", "", now))
	assert.Equal(t, "August 5, 1930 (Died at age 82)", FormatBirthday("1930-08-05", "2012-08-25", now))
	assert.Equal(t, "", FormatBirthday("", "", now))
}

func TestSocialLinks(t *testing.T) {
	links := SocialLinks(models.ExternalIDs{IMDbID: "nm0000138", TwitterID: "leo"})
	require.Len(t, links, 2)
	assert.Equal(t, "https://www.imdb.com/name/nm0000138", links[0].URL)
	assert.Equal(t, "Twitter", links[1].Name)

	assert.Empty(t, SocialLinks(models.ExternalIDs{}))
}
