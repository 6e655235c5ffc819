package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "summer-collection-2024", Slugify("  Summer Collection 2024! "))
	assert.Equal(t, "creme-brulee", Slugify("Crème Brûlée"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSEOSlug(t *testing.T) {
	assert.Equal(t, "video", SEOSlug("???"))
	long := SEOSlug(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(long), 80)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"music", "live", "rock"}, ParseTags("music, live,,  rock ,"))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("jane_doe42"))
	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername("jane doe"))
	assert.False(t, ValidUsername(strings.Repeat("a", 31)))
}

func TestValidateFileType(t *testing.T) {
	assert.NoError(t, ValidateFileType("clip.MP4", "video"))
	assert.Error(t, ValidateFileType("clip.exe", "video"))
	assert.NoError(t, ValidateFileType("cover.jpeg", "image"))
	assert.Error(t, ValidateFileType("cover.jpeg", "audio"))
}
