// cmd/mstore/main_test.go
package main

import (
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/mstore/internal/eeprom"
)

// run executes one CLI invocation against a chip image and returns stdout.
func run(t *testing.T, image string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"mstore", "--bus", "sim:" + image}, args...)
	err := newApp(&out).Run(argv)
	return out.String(), err
}

func mustRun(t *testing.T, image string, args ...string) string {
	t.Helper()
	out, err := run(t, image, args...)
	require.NoError(t, err, "mstore %v", args)
	return out
}

func formattedImage(t *testing.T) string {
	t.Helper()
	image := filepath.Join(t.TempDir(), "chip.bin")
	mustRun(t, image, "clear-all")
	return image
}

func TestCLI_ImagePersistsAcrossRuns(t *testing.T) {
	image := formattedImage(t)

	fi, err := os.Stat(image)
	require.NoError(t, err)
	assert.Equal(t, int64(eeprom.PageCount*eeprom.PageSize), fi.Size())

	assert.Equal(t, "0\n", mustRun(t, image, "store", "hello"))
	assert.Equal(t, "1\n", mustRun(t, image, "store", "--check", "world"))
	assert.Equal(t, "2\n", mustRun(t, image, "count"))
	assert.Equal(t, "hello\n", mustRun(t, image, "read", "--check", "0"))
	assert.Equal(t, "5\n", mustRun(t, image, "length", "1"))

	// one write from the format, one from the store
	assert.Equal(t, "2\n", mustRun(t, image, "writes", "0"))
}

func TestCLI_WriteClearSmash(t *testing.T) {
	image := formattedImage(t)

	mustRun(t, image, "write", "700", "far page")
	assert.Equal(t, "far page\n", mustRun(t, image, "read", "700"))

	mustRun(t, image, "clear", "--check", "700")
	assert.Equal(t, "0\n", mustRun(t, image, "length", "700"))
	assert.Equal(t, "3\n", mustRun(t, image, "writes", "700"))

	mustRun(t, image, "write", "700", "doomed")
	mustRun(t, image, "smash", "700")
	assert.Equal(t, "0\n", mustRun(t, image, "length", "700"))
	assert.Equal(t, "4\n", mustRun(t, image, "writes", "700"))
}

func TestCLI_Stats(t *testing.T) {
	image := formattedImage(t)
	mustRun(t, image, "store", "x")

	out := mustRun(t, image, "info")
	assert.Contains(t, out, "address:     0x50 / 0x54")
	assert.Contains(t, out, "messages:    1")
	assert.Contains(t, out, "free:        1023")
}

func TestCLI_Dump(t *testing.T) {
	image := formattedImage(t)
	mustRun(t, image, "store", "dump me")

	assert.Contains(t, mustRun(t, image, "dump", "0"), `"dump me"`)
	assert.Contains(t, mustRun(t, image, "dump", "--hex", "0"), "page 0 dev=0x50")
}

func TestCLI_MeterStore(t *testing.T) {
	image := formattedImage(t)

	out := mustRun(t, image, "meter", "--store")
	assert.Equal(t, "0;0;0;0;0;0;0;0\nstored in page 0\n", out)
	assert.Equal(t, "1\n", mustRun(t, image, "count"))
}

func TestCLI_Drain(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		got = string(b)
		_, _ = io.WriteString(w, "OK\n")
	}))
	defer srv.Close()

	image := formattedImage(t)
	mustRun(t, image, "store", "a;1")
	mustRun(t, image, "store", "b;2")

	t.Setenv("MSTORE_UPLINK_URL", srv.URL)
	out := mustRun(t, image, "drain")

	assert.Equal(t, "uploaded 2, cleared 2, skipped 0\n", out)
	assert.Equal(t, "a;1\nb;2\n", got)
	assert.Equal(t, "0\n", mustRun(t, image, "count"))
}

func TestCLI_Rejects(t *testing.T) {
	image := formattedImage(t)

	_, err := run(t, image, "smash-all")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "--yes"))

	_, err = run(t, image, "read", "abc")
	require.Error(t, err)

	_, err = run(t, image, "length", "1024")
	require.ErrorIs(t, err, eeprom.ErrPageOutOfRange)

	_, err = run(t, image, "drain")
	require.Error(t, err, "drain needs an uplink")
}

func TestCLI_SmashAllConfirmed(t *testing.T) {
	image := formattedImage(t)
	mustRun(t, image, "store", "gone")
	mustRun(t, image, "smash-all", "--yes")

	assert.Equal(t, "0\n", mustRun(t, image, "count"))
	// format plus the store; smash keeps wear history
	assert.Equal(t, "2\n", mustRun(t, image, "writes", "0"))
}

func TestCLI_MissingBus(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"mstore", "count"})
	require.Error(t, err)
}

func TestCLI_ClearCheck(t *testing.T) {
	image := formattedImage(t)
	mustRun(t, image, "store", "bye")

	mustRun(t, image, "clear", "--check", "0")
	assert.Equal(t, "0\n", mustRun(t, image, "length", "0"))
}

type stuckPage struct{ err error }

func (s stuckPage) ClearPageCheck(int) (bool, error) { return false, s.err }

func TestClearChecked(t *testing.T) {
	err := clearChecked(stuckPage{}, 12)
	require.Error(t, err)
	assert.Equal(t, "page 12: page still holds a message after clear", err.Error())

	busErr := errors.New("nack")
	require.ErrorIs(t, clearChecked(stuckPage{err: busErr}, 12), busErr)
}

func TestBuildMirror_WithoutStatus(t *testing.T) {
	m, closeFn, err := buildMirror(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	closeFn()
}

func TestCLI_MonitorFailsBeforeServing(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	metricsAddr := l.Addr().String()
	require.NoError(t, l.Close())

	image := formattedImage(t)

	// nothing listens on port 1, so the status endpoint cannot connect
	t.Setenv("MSTORE_STATUS_ENDPOINT", "127.0.0.1:1")
	t.Setenv("MSTORE_METRICS_LISTEN", metricsAddr)

	_, err = run(t, image, "monitor")
	require.Error(t, err)

	// the metrics server must not have been started
	l, err = net.Listen("tcp", metricsAddr)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}
