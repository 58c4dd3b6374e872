package site

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDomain(t *testing.T) {
	for _, ok := range []string{"", "example.com", "localhost:8000", "例子.中国"} {
		assert.NoError(t, ValidateDomain(ok), ok)
	}
	for _, bad := range []string{"example .com", "example\t.com", " example.com", "example.com\n", "a\rb", "a\vb", "a\fb"} {
		assert.ErrorIs(t, ValidateDomain(bad), ErrInvalidSite, bad)
	}
}

func TestSiteValidate(t *testing.T) {
	assert.NoError(t, NewSite("example.com", "Example").Validate())

	err := NewSite("bad domain", "Example").Validate()
	require.ErrorIs(t, err, ErrInvalidSite)
	assert.Contains(t, err.Error(), domainWhitespaceMessage)

	err = NewSite(strings.Repeat("a", 101), "Example").Validate()
	require.ErrorIs(t, err, ErrInvalidSite)
	assert.Contains(t, err.Error(), "domain")

	err = NewSite("example.com", strings.Repeat("n", 51)).Validate()
	require.ErrorIs(t, err, ErrInvalidSite)
	assert.Contains(t, err.Error(), "name")

	assert.ErrorIs(t, NewSite("", "").Validate(), ErrInvalidSite)
}

func TestSiteString(t *testing.T) {
	s := NewSite("example.com", "Example")
	assert.Equal(t, "example.com", s.String())
	assert.Equal(t, "example.com", s.DomainName())
	assert.Equal(t, "Example", s.DisplayName())

	s.Update("", "Renamed")
	assert.Equal(t, "example.com", s.Domain)
	assert.Equal(t, "Renamed", s.Name)
}

func TestRequestSite(t *testing.T) {
	req := httptest.NewRequest("GET", "http://testserver:8080/path", nil)

	rs := NewRequestSite(req)
	assert.Equal(t, "testserver:8080", rs.Domain)
	assert.Equal(t, "testserver:8080", rs.Name)
	assert.Equal(t, "testserver:8080", rs.String())

	ctx := context.Background()
	assert.ErrorIs(t, rs.Save(ctx), ErrRequestSiteReadOnly)
	assert.ErrorIs(t, rs.Delete(ctx), ErrRequestSiteReadOnly)
}

func TestMigrateEventCreated(t *testing.T) {
	e := MigrateEvent{CreatedTables: []string{"sites"}}
	assert.True(t, e.Created("sites"))
	assert.False(t, e.Created("users"))
	assert.False(t, MigrateEvent{}.Created("sites"))
}
