package httputil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet(t *testing.T) {
	assert.Equal(t, "", Snippet(nil))
	assert.Equal(t, "blocked", Snippet([]byte("blocked")))

	exact := strings.Repeat("a", MaxErrorBody)
	assert.Equal(t, exact, Snippet([]byte(exact)))

	long := strings.Repeat("b", MaxErrorBody+50)
	got := Snippet([]byte(long))
	assert.Len(t, got, MaxErrorBody+3)
	assert.True(t, strings.HasSuffix(got, "b..."))
}
