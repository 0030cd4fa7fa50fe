package param

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AddAndOrder(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.Add(New("b")))
	require.NoError(t, tbl.Add(New("a")))

	err := tbl.Add(New("b"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))

	assert.Error(t, tbl.Add(nil))

	all := tbl.All()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Name())
	assert.Equal(t, "a", all[1].Name())
	assert.Equal(t, 2, tbl.Len())

	p, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", p.Name())

	_, ok = tbl.Get("missing")
	assert.False(t, ok)
}

func TestTable_PendingAndEvents(t *testing.T) {
	tbl := NewTable()
	temp := New("temp")
	door := New("door")
	hidden := New("hidden")
	hidden.Hide()
	for _, p := range []*Parameter{temp, door, hidden} {
		require.NoError(t, tbl.Add(p))
	}

	temp.SetFloat(20, 1)
	door.SetBool(true)
	hidden.SetInt16(1)

	assert.Equal(t, []*Parameter{temp, door}, tbl.Pending())
	assert.Equal(t, []*Parameter{temp, door}, tbl.Events())

	temp.Publish()
	door.Event()
	assert.Equal(t, []*Parameter{door}, tbl.Pending())
	assert.Equal(t, []*Parameter{temp}, tbl.Events())

	tbl.Reset()
	assert.Empty(t, tbl.Pending())
	assert.Empty(t, tbl.Events())
	assert.True(t, hidden.IsVisible())
}
