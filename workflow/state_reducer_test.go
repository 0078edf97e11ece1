package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastValueReducer(t *testing.T) {
	r := LastValueReducer[int]()
	assert.Equal(t, 7, r(3, 7))
}

func TestAppendReducer_DoesNotAlias(t *testing.T) {
	r := AppendReducer[string]()
	current := make([]string, 1, 8)
	current[0] = "a"

	merged := r(current, []string{"b"})
	merged[0] = "changed"

	assert.Equal(t, []string{"a"}, current)
	assert.Equal(t, []string{"changed", "b"}, merged)
}

func TestAppendReducer_NilInputs(t *testing.T) {
	r := AppendReducer[int]()
	assert.Empty(t, r(nil, nil))
	assert.Equal(t, []int{1}, r(nil, []int{1}))
}

func TestKeepFirstReducer(t *testing.T) {
	r := KeepFirstReducer(func(s string) bool { return s != "" })
	assert.Equal(t, "order", r("order", "search"))
	assert.Equal(t, "search", r("", "search"))
}
