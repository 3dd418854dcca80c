package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoriesOrderIsFixed(t *testing.T) {
	assert.Equal(t, []Category{
		CategoryRent, CategoryConsultancy, CategorySalary, CategoryContract, CategoryOther,
	}, Categories())
}

func TestParseCategoryIsTotal(t *testing.T) {
	assert.Equal(t, CategoryRent, ParseCategory("rent"))
	assert.Equal(t, CategoryOther, ParseCategory("bogus"))
	assert.Equal(t, CategoryOther, ParseCategory(""))
	assert.Equal(t, CategoryOther, ParseCategory("RENT"), "matching is exact, not case folded")
	assert.Equal(t, CategoryOther, ParseCategory(string(CategorySuspense)), "suspense is not postable")
}

func TestCategoryKnown(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.Known(), c)
	}
	assert.False(t, CategorySuspense.Known())
	assert.False(t, Category("banana").Known())
}
