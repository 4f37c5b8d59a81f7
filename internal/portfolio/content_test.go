package portfolio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	content, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), content)

	content, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "Marcos Anton", content.Owner)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	data := `owner: "Jane Doe"
role: "SRE"
technologies:
  - name: Go
    category: backend
    proficiency: expert
social:
  - platform: github
    url: https://github.com/janedoe
    username: janedoe
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	content, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", content.Owner)
	assert.Equal(t, "SRE", content.Role)
	assert.Equal(t, Default().Summary, content.Summary)
	require.Len(t, content.Technologies, 1)
	assert.Equal(t, Expert, content.Technologies[0].Proficiency)
	require.Len(t, content.Social, 1)
	assert.Equal(t, "janedoe", content.Social[0].Username)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка парсинга YAML")
}

func TestGroupTechnologies(t *testing.T) {
	content := Content{Technologies: []Technology{
		{Name: "SQL", Category: CategoryDatabase},
		{Name: "Go", Category: CategoryBackend},
		{Name: "Rust", Category: "systems"},
		{Name: "Docker", Category: CategoryDevOps},
		{Name: "Java", Category: CategoryBackend},
		{Name: "Zig", Category: "hobby"},
	}}

	groups := content.GroupTechnologies()
	require.Len(t, groups, 5)

	var order []Category
	for _, g := range groups {
		order = append(order, g.Category)
	}
	assert.Equal(t, []Category{CategoryBackend, CategoryDevOps, CategoryDatabase, "hobby", "systems"}, order)
	assert.Len(t, groups[0].Technologies, 2)
	assert.Equal(t, "Go", groups[0].Technologies[0].Name)
}

func TestProficiencyLevel(t *testing.T) {
	assert.Equal(t, 1, Beginner.Level())
	assert.Equal(t, 4, Expert.Level())
	assert.Equal(t, 0, Proficiency("guru").Level())
	assert.Equal(t, "Базы данных", CategoryDatabase.Label())
	assert.Equal(t, "other", Category("other").Label())

	assert.Equal(t, "■■■□", Advanced.Bar())
	assert.Equal(t, "□□□□", Proficiency("guru").Bar())
}

func TestSectionNavigation(t *testing.T) {
	assert.Equal(t, SectionAbout, NextSection(SectionHome))
	assert.Equal(t, SectionHome, NextSection(SectionContact))
	assert.Equal(t, SectionContact, PrevSection(SectionHome))
	assert.Equal(t, SectionMusic, PrevSection(SectionContact))
	assert.Equal(t, -1, SectionIndex("blog"))
}
