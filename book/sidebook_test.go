package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideBookBidOrderingDescending(t *testing.T) {
	b := newSideBook(Buy)
	b.getOrCreate(100)
	b.getOrCreate(105)
	b.getOrCreate(102)

	best, ok := b.best()
	require.True(t, ok)
	assert.Equal(t, Price(105), best.price)

	depth := b.depth(10)
	require.Len(t, depth, 3)
	assert.Equal(t, Price(105), depth[0].Price)
	assert.Equal(t, Price(102), depth[1].Price)
	assert.Equal(t, Price(100), depth[2].Price)
}

func TestSideBookAskOrderingAscending(t *testing.T) {
	b := newSideBook(Sell)
	b.getOrCreate(100)
	b.getOrCreate(105)
	b.getOrCreate(102)

	best, ok := b.best()
	require.True(t, ok)
	assert.Equal(t, Price(100), best.price)

	depth := b.depth(10)
	require.Len(t, depth, 3)
	assert.Equal(t, Price(100), depth[0].Price)
	assert.Equal(t, Price(102), depth[1].Price)
	assert.Equal(t, Price(105), depth[2].Price)
}

func TestSideBookLevelDestroyedWhenEmptied(t *testing.T) {
	b := newSideBook(Buy)
	b.getOrCreate(100)
	_, ok := b.lookup(100)
	require.True(t, ok)

	b.remove(100)
	_, ok = b.lookup(100)
	assert.False(t, ok)
	assert.Equal(t, 0, b.len())
}

func TestSideBookGetOrCreateIsIdempotent(t *testing.T) {
	b := newSideBook(Sell)
	l1 := b.getOrCreate(100)
	l2 := b.getOrCreate(100)
	assert.Same(t, l1, l2)
	assert.Equal(t, 1, b.len())
}
