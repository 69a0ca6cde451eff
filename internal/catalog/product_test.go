package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestImageURL(t *testing.T) {
	p := Product{ThumbnailURL: "t", SquareThumbnailURL: "s", ImageURL: "i"}
	assert.Equal(t, "i", p.BestImageURL())

	p.ImageURL = ""
	assert.Equal(t, "s", p.BestImageURL())

	p.SquareThumbnailURL = ""
	assert.Equal(t, "t", p.BestImageURL())

	assert.Empty(t, Product{}.BestImageURL())
}

func TestFlatten(t *testing.T) {
	categories := []Category{
		{ID: "c1", Products: []Product{{ID: "1"}, {ID: ""}, {ID: "2"}}},
		{ID: "c2"},
		{ID: "c3", Products: []Product{{ID: "3"}}},
	}
	got := Flatten(categories)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	assert.NotNil(t, Flatten(nil))
	assert.Empty(t, Flatten(nil))
}

func TestIndex(t *testing.T) {
	idx := NewIndex()
	idx.Put(Product{ID: "1", Name: "old"}, Product{ID: ""})
	idx.Put(Product{ID: "1", Name: "new"}, Product{ID: "2"})

	assert.Equal(t, 2, idx.Len())
	p, ok := idx.Lookup("1")
	assert.True(t, ok)
	assert.Equal(t, "new", p.Name)

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)
}
