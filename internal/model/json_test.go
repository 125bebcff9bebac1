package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayScan(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`["代数","几何"]`)))
	assert.Equal(t, StringArray{"代数", "几何"}, a)

	var fromString StringArray
	require.NoError(t, fromString.Scan(`["x"]`))
	assert.Equal(t, StringArray{"x"}, fromString)

	// NULL和空串不报错，保持零值
	var empty StringArray
	require.NoError(t, empty.Scan(nil))
	require.NoError(t, empty.Scan([]byte{}))
	assert.Nil(t, empty)

	assert.Error(t, empty.Scan(42))
}

func TestStringArrayValueNil(t *testing.T) {
	var a StringArray
	v, err := a.Value()
	require.NoError(t, err)
	// nil切片落库为空数组而不是NULL
	assert.Equal(t, "[]", v)
}

func TestExamPointListScan(t *testing.T) {
	var l ExamPointList
	require.NoError(t, l.Scan([]byte(`[{"point":"函数应用","importance":5}]`)))
	require.Len(t, l, 1)
	assert.Equal(t, "函数应用", l[0].Point)
	assert.Equal(t, 5, l[0].Importance)
}
