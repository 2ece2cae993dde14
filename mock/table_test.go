package mock_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/byte4ever/composure"
	"github.com/byte4ever/composure/mock"
)

func TestTableLookup(t *testing.T) {
	t.Parallel()

	table := mock.NewTable().
		Add(composure.MethodGet, "http://svc/a", 200, "a").
		AddNoBody(composure.MethodDelete, "http://svc/a", 204)

	require.Equal(t, 2, table.Len())

	resp, ok := table.Lookup(composure.MethodGet, "http://svc/a")
	require.True(t, ok)
	require.Equal(t, 200, resp.StatusCode())

	body, ok := resp.Body()
	require.True(t, ok)
	require.Equal(t, "a", body)

	resp, ok = table.Lookup(composure.MethodDelete, "http://svc/a")
	require.True(t, ok)
	require.False(t, resp.HasBody())

	_, ok = table.Lookup(composure.MethodPost, "http://svc/a")
	require.False(t, ok)
}

func TestTableLookupReturnsCopies(t *testing.T) {
	t.Parallel()

	table := mock.NewTable().Add(composure.MethodGet, "http://svc/a", 200, "a")

	first, _ := table.Lookup(composure.MethodGet, "http://svc/a")
	first.SetBody("changed")
	first.SetStatusCode(500)

	second, _ := table.Lookup(composure.MethodGet, "http://svc/a")
	body, _ := second.Body()

	require.Equal(t, 200, second.StatusCode())
	require.Equal(t, "a", body)
}

func TestTableAddReplaces(t *testing.T) {
	t.Parallel()

	table := mock.NewTable().
		Add(composure.MethodGet, "http://svc/a", 200, "old").
		Add(composure.MethodGet, "http://svc/a", 201, "new")

	resp, _ := table.Lookup(composure.MethodGet, "http://svc/a")
	body, _ := resp.Body()

	require.Equal(t, 1, table.Len())
	require.Equal(t, 201, resp.StatusCode())
	require.Equal(t, "new", body)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mocks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `{
		"mocks": [
			{"method": "GET", "url": "http://svc/users", "code": 200, "body": "[]"},
			{"method": "POST", "url": "http://svc/users", "code": 201, "body": ""},
			{"method": "DELETE", "url": "http://svc/users/1", "code": 204}
		]
	}`)

	table, err := mock.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	resp, ok := table.Lookup(composure.MethodPost, "http://svc/users")
	require.True(t, ok)
	require.True(t, resp.HasBody())

	resp, ok = table.Lookup(composure.MethodDelete, "http://svc/users/1")
	require.True(t, ok)
	require.False(t, resp.HasBody())
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	_, err := mock.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	_, err = mock.LoadFile(writeFile(t, "{"))
	require.Error(t, err)

	_, err = mock.LoadFile(writeFile(t, `{"mocks": [{"method": "PATCH", "url": "u", "code": 200}]}`))
	require.ErrorIs(t, err, composure.ErrUnsupportedMethod)
}
