package srcsrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariables_SetKeepsOrder(t *testing.T) {
	t.Parallel()

	vs := Variables{Literal("A", "1"), Literal("B", "2")}
	vs = vs.Set(Literal("b", "3"))
	vs = vs.Set(Literal("C", "4"))

	assert.Equal(t, []string{"A", "b", "C"}, vs.Names())
	v, ok := vs.Get("B")
	assert.True(t, ok)
	assert.Equal(t, "3", v.Value)
}

func TestVariables_SetDoesNotAlias(t *testing.T) {
	t.Parallel()

	orig := Variables{Literal("A", "1")}
	_ = orig.Set(Literal("A", "2"))
	assert.Equal(t, "1", orig[0].Value)
}

func TestVariables_Delete(t *testing.T) {
	t.Parallel()

	vs := Variables{Literal("A", "1"), Template("B", "%A%"), Literal("C", "3")}
	out, removed, ok := vs.Delete("b")
	assert.True(t, ok)
	assert.Equal(t, "%A%", removed.Value)
	assert.Equal(t, []string{"A", "C"}, out.Names())
	assert.Len(t, vs, 3)

	_, _, ok = vs.Delete("missing")
	assert.False(t, ok)
}

func TestVariable_Output(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "AB%%CD", Literal("X", "AB%CD").Output())
	assert.Equal(t, "%var2%/%TOKEN%", Template("X", "%var2%/%TOKEN%").Output())
}

func TestRenumberPlaceholders(t *testing.T) {
	t.Parallel()

	shift := func(n int) int {
		if n >= 2 {
			return n + 1
		}
		return n
	}
	cases := []struct{ in, want string }{
		{"%var2%", "%var3%"},
		{"%var1%", "%var1%"},
		{"%URL%/%var2%/%var3%?ref=%var4%", "%URL%/%var3%/%var4%?ref=%var5%"},
		{"%VAR10%", "%var11%"},
		{"%%var2%%", "%%var2%%"},
		{"no markers", "no markers"},
	}
	for _, tc := range cases {
		if got := RenumberPlaceholders(tc.in, shift); got != tc.want {
			t.Errorf("RenumberPlaceholders(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenumberVariables_SkipsLiterals(t *testing.T) {
	t.Parallel()

	vs := Variables{Literal("L", "%var2%"), Template("T", "%var2%")}
	out := RenumberVariables(vs, func(n int) int { return n + 5 })
	assert.Equal(t, "%var2%", out[0].Value)
	assert.Equal(t, "%var7%", out[1].Value)
	assert.Equal(t, "%var2%", vs[1].Value)
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{2, 3, 4}, Placeholders("%A%/%var2%/%var3%?%%var9%%&%var4%"))
	assert.Empty(t, Placeholders("%TRGFILE%"))
}
