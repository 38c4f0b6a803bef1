package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	v, c := Version, Commit
	t.Cleanup(func() { Version, Commit = v, c })

	Version, Commit = "1.2.0", ""
	assert.Equal(t, "1.2.0", Short())

	Commit = "0123456789abcdef"
	assert.Equal(t, "1.2.0+0123456", Short())

	Commit = "abc"
	assert.Equal(t, "1.2.0+abc", Short())
}
