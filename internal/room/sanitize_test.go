package room

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripScriptTags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"<script>alert(1)</script>", ""},
		{"a<script src='x'>bad</script>b", "ab"},
		{"a<SCRIPT>bad</SCRIPT>b", "ab"},
		{"dangling <script> tag", "dangling  tag"},
		{"closing </script> tag", "closing  tag"},
		{"multi\n<script>\nline\n</script>\ndone", "multi\n\ndone"},
		{"<b>bold stays</b>", "<b>bold stays</b>"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, stripScriptTags(tc.in), "input: %q", tc.in)
	}
}
