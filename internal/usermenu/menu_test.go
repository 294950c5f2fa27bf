package usermenu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExclusionRemovesOnlyNamedEntries(t *testing.T) {
	all, err := New(DefaultItems("http://erp.local"))
	require.NoError(t, err)
	assert.Equal(t, []string{"documentation", "support", "shortcuts", "separator", "profile", "odoo_account", "log_out"}, all.Keys())

	pruned, err := New(DefaultItems("http://erp.local"), DefaultExcluded...)
	require.NoError(t, err)
	assert.Equal(t, []string{"separator", "profile", "log_out"}, pruned.Keys())

	for _, key := range DefaultExcluded {
		_, ok := pruned.Get(key)
		assert.False(t, ok, key)
	}
	for _, key := range pruned.Keys() {
		before, _ := all.Get(key)
		after, _ := pruned.Get(key)
		assert.Equal(t, before, after)
	}
}

func TestExclusionIsOrderIndependent(t *testing.T) {
	r, err := New(nil, "support")
	require.NoError(t, err)

	require.NoError(t, r.Add(Item{Key: "support", Label: "Support", Sequence: 5}))
	require.NoError(t, r.Add(Item{Key: "profile", Label: "Preferences", Sequence: 1}))
	assert.Equal(t, []string{"profile"}, r.Keys())
}

func TestExclusionIgnoresUnknownAndBlankKeys(t *testing.T) {
	r, err := New(DefaultItems(""), "no_such_item", " ", "support", "support")
	require.NoError(t, err)
	assert.Len(t, r.Items(), 6)
	assert.Equal(t, []string{"no_such_item", "support"}, r.Excluded())
}

func TestAddOrdersBySequence(t *testing.T) {
	r, err := New([]Item{
		{Key: "b", Sequence: 20},
		{Key: "a", Sequence: 10},
		{Key: "c", Sequence: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())

	item, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, KindLink, item.Kind)
}

func TestDuplicateKey(t *testing.T) {
	_, err := New([]Item{{Key: "a"}, {Key: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateItem)
}

func TestRemove(t *testing.T) {
	r, err := New(DefaultItems(""))
	require.NoError(t, err)
	assert.True(t, r.Remove(KeyShortcuts))
	assert.False(t, r.Remove(KeyShortcuts))
	_, ok := r.Get(KeyShortcuts)
	assert.False(t, ok)

	item, ok := r.Get(KeyLogOut)
	require.True(t, ok)
	assert.Equal(t, KindLogout, item.Kind)
}

func TestProfileLinksToBackend(t *testing.T) {
	r, err := New(DefaultItems("https://erp.example.com/"), DefaultExcluded...)
	require.NoError(t, err)
	item, ok := r.Get(KeyProfile)
	require.True(t, ok)
	assert.Equal(t, "https://erp.example.com/web#action=base.action_res_users_my", item.Href)
}
