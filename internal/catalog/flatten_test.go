package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/models"
)

func sampleCatalog() models.Catalog {
	return models.Catalog{
		{
			Name: "Work",
			Sections: []models.Section{
				{
					Name: "Email",
					Categories: []models.Category{
						{Name: "Cold Outreach", Prompts: []string{"Write a follow-up", "Draft an intro"}},
						{Name: "Replies", Prompts: []string{"Write a follow-up"}},
					},
				},
				{Name: "Empty", Categories: nil},
			},
		},
		{
			Name: "Home",
			Sections: []models.Section{
				{Name: "Cooking", Categories: []models.Category{{Name: "Dinner", Prompts: []string{"Plan a menu"}}}},
			},
		},
	}
}

func TestFlattenScenario(t *testing.T) {
	c := models.Catalog{{
		Name: "Work",
		Sections: []models.Section{{
			Name:       "Email",
			Categories: []models.Category{{Name: "Cold Outreach", Prompts: []string{"Write a follow-up"}}},
		}},
	}}

	records := Flatten(c)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Write a follow-up", r.Text)
	assert.Equal(t, "Work", r.Tab)
	assert.Equal(t, "Email", r.Section)
	assert.Equal(t, "Cold Outreach", r.Category)
	assert.NotEmpty(t, r.ID)
}

func TestFlattenPreservesOrderAndLocation(t *testing.T) {
	c := sampleCatalog()
	records := Flatten(c)

	require.Len(t, records, c.PromptCount())

	want := []models.FlatPrompt{
		{Text: "Write a follow-up", Tab: "Work", Section: "Email", Category: "Cold Outreach"},
		{Text: "Draft an intro", Tab: "Work", Section: "Email", Category: "Cold Outreach"},
		{Text: "Write a follow-up", Tab: "Work", Section: "Email", Category: "Replies"},
		{Text: "Plan a menu", Tab: "Home", Section: "Cooking", Category: "Dinner"},
	}
	for i := range want {
		want[i].ID = DeriveID(want[i].Tab, want[i].Section, want[i].Category, want[i].Text)
	}

	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenKeepsDuplicates(t *testing.T) {
	records := Flatten(sampleCatalog())
	// Same text in two categories: two records, two ids
	assert.NotEqual(t, records[0].ID, records[2].ID)

	dup := models.Catalog{{Name: "T", Sections: []models.Section{{Name: "S", Categories: []models.Category{
		{Name: "C", Prompts: []string{"same", "same"}},
	}}}}}
	got := Flatten(dup)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].ID, got[1].ID)
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.NotNil(t, Flatten(nil))
	assert.Empty(t, Flatten(models.Catalog{}))
}

func TestInTabAndFindByID(t *testing.T) {
	records := Flatten(sampleCatalog())

	home := InTab(records, "Home")
	require.Len(t, home, 1)
	assert.Equal(t, "Plan a menu", home[0].Text)

	found, ok := FindByID(records, home[0].ID)
	assert.True(t, ok)
	assert.Equal(t, home[0], found)

	_, ok = FindByID(records, "missing")
	assert.False(t, ok)
}
