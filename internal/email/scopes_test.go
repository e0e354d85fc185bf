// AngelaMos | 2026
// scopes_test.go

package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeListRoundTrip(t *testing.T) {
	scopes := ScopeList{
		"https://www.googleapis.com/auth/gmail.readonly",
		"https://www.googleapis.com/auth/userinfo.email",
	}

	raw, err := scopes.Value()
	require.NoError(t, err)

	var decoded ScopeList
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, scopes, decoded)
}

func TestScopeListRejectsEmptyEntries(t *testing.T) {
	_, err := ScopeList{"valid", "  "}.Value()
	assert.Error(t, err)

	var decoded ScopeList
	err = decoded.Scan([]byte(`["ok", ""]`))
	assert.Error(t, err)
}

func TestScopeListScanMalformed(t *testing.T) {
	var decoded ScopeList
	assert.Error(t, decoded.Scan([]byte(`{"not": "an array"}`)))
	assert.Error(t, decoded.Scan(42))
}

func TestScopeListScanNil(t *testing.T) {
	var decoded ScopeList
	require.NoError(t, decoded.Scan(nil))
	assert.Empty(t, decoded)
}

func TestParseScopes(t *testing.T) {
	scopes := ParseScopes("a b  c")
	assert.Equal(t, ScopeList{"a", "b", "c"}, scopes)

	assert.Empty(t, ParseScopes(""))
}
