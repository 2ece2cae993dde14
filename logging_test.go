package composure_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/composure"
	"github.com/byte4ever/composure/mock"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		out = append(out, entry)
	}

	return out
}

func TestLoggingRecordsSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	c := composure.New("", mock.Respond(200, "{}"),
		composure.WithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel)),
		composure.WithFeatures(composure.RequestID(""), composure.Logging()),
	)

	_, err := get(t, c, "http://svc/a")
	require.NoError(t, err)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "info", lines[0]["level"])
	require.Equal(t, "call completed", lines[0]["message"])
	require.Equal(t, "GET", lines[0]["method"])
	require.Equal(t, "http://svc/a", lines[0]["url"])
	require.InDelta(t, 200, lines[0]["status"], 0)
	require.NotEmpty(t, lines[0]["request_id"])
}

func TestLoggingRecordsFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	c := composure.New("", mock.Fail(errors.New("refused")),
		composure.WithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel)),
		composure.WithFeatures(composure.Logging()),
	)

	_, err := get(t, c, "http://svc/a")
	require.Error(t, err)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "error", lines[0]["level"])
	require.Contains(t, lines[0]["error"], "refused")
}
