package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAudiences(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil defaults", nil, []string{"straight"}},
		{"unknown only defaults", []string{"martian"}, []string{"straight"}},
		{"case and space", []string{" Gay ", "TRANS"}, []string{"gay", "trans"}},
		{"canonical order and dedup", []string{"animated", "straight", "animated"}, []string{"straight", "animated"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAudiences(tt.in))
		})
	}
}

func TestParseAudiences(t *testing.T) {
	assert.Equal(t, []string{"straight"}, ParseAudiences(""))
	assert.Equal(t, []string{"gay", "lesbian"}, ParseAudiences(`["lesbian","gay"]`))
	assert.Equal(t, []string{"bisexual", "animated"}, ParseAudiences("animated, bisexual"))
	assert.Equal(t, []string{"straight"}, ParseAudiences(`["broken"`))
	assert.Equal(t, []string{"trans", "animated"}, ParseAudiences(` [ "Animated" , "trans" ] `))
	assert.True(t, IsAudience("trans"))
	assert.False(t, IsAudience("Trans"))
}

func TestSlugToLabel(t *testing.T) {
	tests := map[string]string{
		"gaming-fever":      "Gaming Fever",
		"CATS":              "Cats",
		"fresh--stuff-":     "Fresh Stuff",
		"caf%C3%A9-culture": "Café Culture",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SlugToLabel(in), in)
	}
	assert.Equal(t, "gaming-fever", LabelToSlug("Gaming  Fever"))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"  funny cats ", "Funny Cats", "", "DOGS", "dogs"})
	assert.Equal(t, []string{"Funny Cats", "Dogs"}, got)
}

func TestResolveViewer(t *testing.T) {
	ctx := context.Background()

	anon := ResolveViewer(ctx, fakeViewerSource{}, "", []string{"gay"})
	assert.Equal(t, AnonymousViewer{Audiences: []string{"gay"}}, anon)
	assert.Equal(t, "", ViewerID(anon))

	src := fakeViewerSource{
		tags:    []string{"cats"},
		follows: []string{"f1"},
		prefs:   []string{"trans"},
	}
	v, ok := ResolveViewer(ctx, src, "me", nil).(IdentifiedViewer)
	assert.True(t, ok)
	assert.Equal(t, "me", v.ID)
	assert.Equal(t, []string{"trans"}, v.Audiences)
	assert.Equal(t, []string{"cats"}, v.RecTags)
	assert.Equal(t, []string{"f1"}, v.Follows)
	assert.True(t, v.Personalizable())

	// explicit audiences win over stored preferences
	v = ResolveViewer(ctx, src, "me", []string{"animated"}).(IdentifiedViewer)
	assert.Equal(t, []string{"animated"}, v.Audiences)
}

func TestResolveViewerDegradesOnErrors(t *testing.T) {
	src := fakeViewerSource{
		tagsErr:    errors.New("tags"),
		followsErr: errors.New("follows"),
		prefsErr:   errors.New("prefs"),
	}

	v := ResolveViewer(context.Background(), src, "me", nil).(IdentifiedViewer)
	assert.Equal(t, []string{"straight"}, v.Audiences)
	assert.Empty(t, v.RecTags)
	assert.Empty(t, v.Follows)
	assert.False(t, v.Personalizable())
}
