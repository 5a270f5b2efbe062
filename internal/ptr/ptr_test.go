package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type status string

func TestDeref(t *testing.T) {
	assert.Equal(t, 7, Deref(To(7), 0))
	assert.Equal(t, 3, Deref[int](nil, 3))
}

func TestToString(t *testing.T) {
	s := status("DONE")
	assert.Equal(t, "DONE", ToString(&s))
	assert.Equal(t, "", ToString[status](nil))
}

func TestNonEmpty(t *testing.T) {
	assert.Nil(t, NonEmpty(""))
	assert.Equal(t, "x", *NonEmpty("x"))
}
