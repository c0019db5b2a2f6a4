package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextStripsTags(t *testing.T) {
	require.Equal(t, "Spring Fest", Text("<b>Spring</b> Fest"))
	require.Equal(t, "alert", Text("<script>alert</script>"))
}

func TestTextTrims(t *testing.T) {
	require.Equal(t, "Main Hall", Text("  Main Hall \n"))
}

func TestTextPlainPassthrough(t *testing.T) {
	require.Equal(t, "Mid-term exam, room 2B", Text("Mid-term exam, room 2B"))
}
