package service

import (
	"testing"

	postModel "discovery_admin/internal/domain/post/model"

	"github.com/stretchr/testify/assert"
)

// fakeTaxonomy serves a fixed interest dictionary
type fakeTaxonomy struct {
	entries []TaxonomyEntry
}

func (f *fakeTaxonomy) Entries() ([]TaxonomyEntry, error) {
	return f.entries, nil
}

func testTaxonomy() *fakeTaxonomy {
	return &fakeTaxonomy{entries: []TaxonomyEntry{
		{Slug: "fashion", Name: "Fashion", Keywords: []string{"style", "outfit", "sneakers"}},
		{Slug: "fitness", Name: "Fitness", Keywords: []string{"gym", "workout", "running"}},
		{Slug: "food", Name: "Food", Keywords: []string{"cooking", "recipe"}},
	}}
}

func taggedPost(id string, tags ...string) postModel.Post {
	p := postModel.Post{Tags: tags, Status: postModel.StatusApproved}
	p.ID = id
	return p
}

func TestAnalyzeTags(t *testing.T) {
	t.Run("Frequent keyword tag maps with medium confidence", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		for i := 0; i < 15; i++ {
			repo.addPost(taggedPost("p-sneakers-"+string(rune('a'+i)), "Sneakers"))
		}
		a := &analyzer{repo: repo, taxonomy: testTaxonomy()}

		suggestions, err := a.AnalyzeTags(100, false)

		assert.NoError(t, err)
		assert.Len(t, suggestions, 1)
		assert.Equal(t, "sneakers", suggestions[0].Tag)
		assert.Equal(t, 15, suggestions[0].Frequency)
		assert.Equal(t, "fashion", suggestions[0].SuggestedInterest)
		assert.GreaterOrEqual(t, suggestions[0].Confidence, 0.5)
	})

	t.Run("Exact interest name match boosts confidence", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		for i := 0; i < 12; i++ {
			repo.addPost(taggedPost("p-fashion-"+string(rune('a'+i)), "fashion"))
		}
		a := &analyzer{repo: repo, taxonomy: testTaxonomy()}

		suggestions, err := a.AnalyzeTags(100, false)

		assert.NoError(t, err)
		assert.Equal(t, "fashion", suggestions[0].SuggestedInterest)
		// base 0.3 + frequency 0.2 + exact match 0.3
		assert.InDelta(t, 0.8, suggestions[0].Confidence, 0.001)
	})

	t.Run("Unknown tag gets zero confidence and no suggestion", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		repo.addPost(taggedPost("p-1", "quantumblochsphere"))
		a := &analyzer{repo: repo, taxonomy: testTaxonomy()}

		suggestions, err := a.AnalyzeTags(100, false)

		assert.NoError(t, err)
		assert.Len(t, suggestions, 1)
		assert.Empty(t, suggestions[0].SuggestedInterest)
		assert.Zero(t, suggestions[0].Confidence)
	})

	t.Run("Suggestions sorted by frequency then tag", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		repo.addPost(taggedPost("p-1", "gym", "cooking"))
		repo.addPost(taggedPost("p-2", "gym"))
		repo.addPost(taggedPost("p-3", "GYM "))
		a := &analyzer{repo: repo, taxonomy: testTaxonomy()}

		suggestions, err := a.AnalyzeTags(100, false)

		assert.NoError(t, err)
		assert.Len(t, suggestions, 2)
		assert.Equal(t, "gym", suggestions[0].Tag)
		assert.Equal(t, 3, suggestions[0].Frequency)
		assert.Equal(t, "fitness", suggestions[0].SuggestedInterest)
		assert.Equal(t, "cooking", suggestions[1].Tag)
		assert.Equal(t, "food", suggestions[1].SuggestedInterest)
	})

	t.Run("Tags and categories are merged and deduplicated per post", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		p := taggedPost("p-1", "gym")
		p.Categories = []string{"gym", "cooking"}
		repo.addPost(p)
		a := &analyzer{repo: repo, taxonomy: testTaxonomy()}

		suggestions, err := a.AnalyzeTags(100, false)

		assert.NoError(t, err)
		assert.Len(t, suggestions, 2)
		for _, sg := range suggestions {
			assert.Equal(t, 1, sg.Frequency)
		}
	})
}
