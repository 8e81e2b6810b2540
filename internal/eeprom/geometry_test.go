// internal/eeprom/geometry_test.go
package eeprom

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/mstore/internal/bus/sim"
)

func TestGeometryConstants(t *testing.T) {
	require.Equal(t, 128*1024, ChipSize)
	require.Equal(t, 512, PagesPerBlock)
	require.Equal(t, 1024, PageCount)
	require.Equal(t, 119, MaxMessageLength)
	require.Zero(t, BlockSize%PageSize, "pages must tile a block")
	require.Zero(t, PageSize%WritePageSize, "pages must align to write pages")
}

func TestTwiAddress(t *testing.T) {
	cases := []struct {
		page int
		want uint8
	}{
		{0, 0x50},
		{PagesPerBlock - 1, 0x50},
		{PagesPerBlock, 0x54},
		{PageCount - 1, 0x54},
	}

	for _, c := range cases {
		got, err := TwiAddress(0x50, c.page)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "page %d", c.page)
	}

	_, err := TwiAddress(0x50, PageCount)
	require.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = TwiAddress(0x50, -1)
	require.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestPageStartAddress(t *testing.T) {
	cases := []struct {
		page int
		want uint16
	}{
		{0, 0},
		{1, PageSize},
		{PagesPerBlock - 1, BlockSize - PageSize},
		{PagesPerBlock, 0},
		{PagesPerBlock + 2, 2 * PageSize},
	}

	for _, c := range cases {
		got, err := PageStartAddress(c.page)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "page %d", c.page)
	}

	_, err := PageStartAddress(PageCount)
	require.ErrorIs(t, err, ErrPageOutOfRange)
}

// TestAddressingProperties validates the page map using property-based testing.
func TestAddressingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	pages := gen.IntRange(0, PageCount-1)

	properties.Property("deterministic", prop.ForAll(
		func(page int) bool {
			a1, _ := TwiAddress(0x50, page)
			a2, _ := TwiAddress(0x50, page)
			o1, _ := PageStartAddress(page)
			o2, _ := PageStartAddress(page)
			return a1 == a2 && o1 == o2
		},
		pages,
	))

	properties.Property("lower half -> base, upper half -> base|select", prop.ForAll(
		func(page int) bool {
			a, err := TwiAddress(0x50, page)
			if err != nil {
				return false
			}
			if page < PageCount/2 {
				return a == 0x50
			}
			return a == 0x54
		},
		pages,
	))

	properties.Property("page fits inside its block", prop.ForAll(
		func(page int) bool {
			o, err := PageStartAddress(page)
			return err == nil && int(o)+PageSize <= BlockSize
		},
		pages,
	))

	properties.Property("distinct pages in one block never overlap", prop.ForAll(
		func(p, q int) bool {
			ap, _ := TwiAddress(0x50, p)
			aq, _ := TwiAddress(0x50, q)
			if p == q || ap != aq {
				return true
			}
			op, _ := PageStartAddress(p)
			oq, _ := PageStartAddress(q)
			return int(op)+PageSize <= int(oq) || int(oq)+PageSize <= int(op)
		},
		pages, pages,
	))

	properties.TestingRun(t)
}

// TestRoundTripProperties writes random-length messages to random pages.
func TestRoundTripProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	b := sim.New()
	c := sim.NewChip(testAddress)
	c.Attach(b)
	s, err := New(b, testAddress, Options{})
	require.NoError(t, err)

	properties := gopter.NewProperties(parameters)

	properties.Property("write then retrieve reproduces the message", prop.ForAll(
		func(page, n int, seed uint8) bool {
			msg := message(n, seed)
			if err := s.WriteMessage(page, msg); err != nil {
				return false
			}
			l, err := s.MessageLength(page)
			if err != nil || l != n {
				return false
			}
			buf := make([]byte, MaxMessageLength)
			got, err := s.RetrieveMessage(page, buf)
			return err == nil && string(buf[:got]) == string(msg)
		},
		gen.IntRange(0, PageCount-1),
		gen.IntRange(0, MaxMessageLength),
		gen.UInt8(),
	))

	properties.Property("never a burst over the chunk size", prop.ForAll(
		func(page, n int) bool {
			c.ResetCounters()
			if err := s.WriteMessage(page, message(n, 0)); err != nil {
				return false
			}
			return c.MaxBurst <= MaxChunkSize && c.Rollovers == 0
		},
		gen.IntRange(0, PageCount-1),
		gen.IntRange(0, MaxMessageLength),
	))

	properties.TestingRun(t)
}
