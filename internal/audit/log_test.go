// ABOUTME: Tests for the interaction log cap, trim policy and filtered reads

package audit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingArchiver struct{ calls int }

func (f *failingArchiver) Archive(Record) error {
	f.calls++
	return errors.New("disk full")
}

func TestAppendCapsAtFiveHundredAndTrimsToNewest250(t *testing.T) {
	l := NewLog(nil, nil)

	for i := 0; i < 500; i++ {
		l.Append("5512345678", KindInbound, fmt.Sprintf("msg %d", i))
	}
	assert.Equal(t, 500, l.Len())

	// The 501st record triggers the trim to the newest 250.
	l.Append("5512345678", KindInbound, "msg 500")
	assert.Equal(t, 250, l.Len())

	recent := l.Recent("", 250)
	require.Len(t, recent, 250)
	assert.Equal(t, "msg 251", recent[0].Detail)
	assert.Equal(t, "msg 500", recent[249].Detail)
}

func TestRecentFiltersByPhoneAndLimit(t *testing.T) {
	l := NewLog(nil, nil)
	l.Append("5512345678", KindInbound, "hola")
	l.Append("5598765432", KindOutbound, "menu")
	l.Append("5512345678", KindOutbound, "bienvenida")

	got := l.Recent("5512", 10)
	require.Len(t, got, 2)
	assert.Equal(t, KindInbound, got[0].Kind)
	assert.Equal(t, KindOutbound, got[1].Kind)

	got = l.Recent("", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "bienvenida", got[0].Detail)
}

func TestDetailIsTruncated(t *testing.T) {
	l := NewLog(nil, nil)

	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'á')
	}
	l.Append("5512345678", KindInbound, string(long))

	got := l.Recent("", 1)
	require.Len(t, got, 1)
	assert.Len(t, []rune(got[0].Detail), 120)
}

func TestArchiverFailureDoesNotDropRecords(t *testing.T) {
	arch := &failingArchiver{}
	l := NewLog(arch, nil)

	l.Append("5512345678", KindInbound, "hola")

	assert.Equal(t, 1, arch.calls)
	assert.Equal(t, 1, l.Len())
}
