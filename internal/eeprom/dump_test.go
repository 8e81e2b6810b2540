// internal/eeprom/dump_test.go
package eeprom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpPageHex(t *testing.T) {
	s, _, c := newFormattedStore(t, Options{})
	require.NoError(t, s.WriteMessage(PagesPerBlock+1, []byte("ABCDEFGH")))
	c.ResetCounters()

	var out bytes.Buffer
	require.NoError(t, s.DumpPageHex(&out, PagesPerBlock+1))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 1+PageSize/16)
	require.Equal(t, "page 513 dev=0x54 offset=0x0080", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "10080  02 00 00 00 08"), lines[1])
	require.Contains(t, lines[1], "ABCDEFG")

	require.Zero(t, c.Bursts, "dump must not write")
}

func TestDumpPageHuman(t *testing.T) {
	s, _, c := newFormattedStore(t, Options{})
	require.NoError(t, s.WriteMessage(3, []byte("12;300")))
	c.ResetCounters()

	var out bytes.Buffer
	require.NoError(t, s.DumpPageHuman(&out, 3))

	got := out.String()
	require.Contains(t, got, "page:      3\n")
	require.Contains(t, got, "device:    0x50\n")
	require.Contains(t, got, "writes:    2 ")
	require.Contains(t, got, "length:    6\n")
	require.Contains(t, got, " ok\n")
	require.Contains(t, got, `message:   "12;300"`)

	require.Zero(t, c.Bursts, "dump must not write")
}

func TestDumpPageHuman_FreshChip(t *testing.T) {
	s, _, _ := newTestStore(t, Options{})

	var out bytes.Buffer
	require.NoError(t, s.DumpPageHuman(&out, 0))
	require.Contains(t, out.String(), "length out of range")
	require.NotContains(t, out.String(), "message:")
}

func TestDumpPageHuman_Mismatch(t *testing.T) {
	s, _, c := newFormattedStore(t, Options{})
	require.NoError(t, s.WriteMessage(3, []byte("abc")))
	c.FlipBit(absAddr(3, HeaderSize), 0)

	var out bytes.Buffer
	require.NoError(t, s.DumpPageHuman(&out, 3))
	require.Contains(t, out.String(), "MISMATCH")
}
