package cart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2 AND c = $3", pg.rebind("UPDATE t SET a = ? WHERE b = ? AND c = ?"))

	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "SELECT ? FROM t", lite.rebind("SELECT ? FROM t"))
}

func TestClampAdd(t *testing.T) {
	assert.Equal(t, int32(3), clampAdd(1, 2))
	assert.Equal(t, int32(0), clampAdd(1, -2))
	assert.Equal(t, int32(0), clampAdd(0, -1))
	assert.Equal(t, int32(math.MaxInt32), clampAdd(math.MaxInt32, 1))
}

func TestIDSet(t *testing.T) {
	s := IDSet{"b": {}, "a": {}}
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b"}, s.Sorted())
	assert.Empty(t, IDSet{}.Sorted())
}
