package refdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type staticLookup map[string]string

func (l staticLookup) TitleByCode(code string) (string, bool) {
	title, ok := l[code]
	return title, ok
}

func TestResolverSubstitutesBoundFields(t *testing.T) {
	resolver := NewResolver().
		Bind("currency_code", staticLookup{"IRR": "Iranian Rial"}).
		Bind("structure_code", staticLookup{"STD": "Standard"})

	out := resolver.Resolve(map[string]string{
		"currency_code":  "IRR",
		"structure_code": "STD",
		"title":          "Main book",
	})

	require.Equal(t, "Iranian Rial", out["currency_code"])
	require.Equal(t, "Standard", out["structure_code"])
	require.Equal(t, "Main book", out["title"], "unbound fields pass through")
}

func TestResolverFallsBackToRawCode(t *testing.T) {
	resolver := NewResolver().Bind("currency_code", staticLookup{"IRR": "Iranian Rial"})

	out := resolver.Resolve(map[string]string{"currency_code": "XYZ"})
	require.Equal(t, "XYZ", out["currency_code"])

	require.Equal(t, "XYZ", resolver.Title("currency_code", "XYZ"))
	require.Equal(t, "Iranian Rial", resolver.Title("currency_code", "IRR"))
}

func TestResolverScopesLookupsPerField(t *testing.T) {
	// The same code value exists in two collections; each field only
	// resolves against its own binding.
	resolver := NewResolver().
		Bind("currency_code", staticLookup{"100": "Iranian Rial"}).
		Bind("account_code", staticLookup{"100": "Cash"})

	out := resolver.Resolve(map[string]string{
		"currency_code": "100",
		"account_code":  "100",
	})
	require.Equal(t, "Iranian Rial", out["currency_code"])
	require.Equal(t, "Cash", out["account_code"])
}

func TestResolverEmptyCodePassesThrough(t *testing.T) {
	resolver := NewResolver().Bind("currency_code", staticLookup{"IRR": "Iranian Rial"})

	out := resolver.Resolve(map[string]string{"currency_code": ""})
	require.Equal(t, "", out["currency_code"])
	require.Equal(t, "", resolver.Title("currency_code", ""))
}
