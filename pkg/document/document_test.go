package document

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed applies a sequence of up-to-date inserts so the document reaches a
// known text and version.
func seed(t *testing.T, d *Document, chunks ...string) {
	t.Helper()
	for _, c := range chunks {
		_, _, err := d.Insert(len(d.Text()), c, d.Version())
		require.NoError(t, err)
	}
}

func TestInsertAtCurrentVersion(t *testing.T) {
	d := New("paper", "alice")

	pos, version, err := d.Insert(0, "hello", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 1, version)
	assert.Equal(t, "hello", d.Text())
}

// An edit issued against the current version applies with no transformation.
func TestRebaseIdentity(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "abc")

	pos, version, err := d.Insert(1, "X", d.Version())
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, version)
	assert.Equal(t, "aXbc", d.Text())
}

// Two inserts against the same version: the second is pushed right past the
// first, so all observers converge on the same text.
func TestConcurrentInsertsSamePosition(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "a", "b", "c")
	require.Equal(t, "abc", d.Text())
	require.Equal(t, 3, d.Version())

	pos, version, err := d.Insert(1, "X", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 4, version)
	assert.Equal(t, "aXbc", d.Text())

	pos, version, err = d.Insert(1, "Y", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	assert.Equal(t, 5, version)
	assert.Equal(t, "aXYbc", d.Text())
}

// Insert then a delete produced against the older version: the delete's
// range is untouched because the insert landed after it.
func TestInsertThenStaleDelete(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "hello")
	base := d.Version()

	pos, version, err := d.Insert(5, "!", base)
	require.NoError(t, err)
	assert.Equal(t, 5, pos)
	assert.Equal(t, base+1, version)
	assert.Equal(t, "hello!", d.Text())

	pos, length, version, err := d.Delete(0, 2, base)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 2, length)
	assert.Equal(t, base+2, version)
	assert.Equal(t, "llo!", d.Text())
}

// A stale insert whose position was pushed left by an earlier delete.
func TestInsertRebasedOverDelete(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "abcdef")
	base := d.Version()

	_, _, _, err := d.Delete(0, 2, base)
	require.NoError(t, err)
	require.Equal(t, "cdef", d.Text())

	// Observed position 4 ("before e"); the delete removed two bytes
	// entirely before it.
	pos, _, err := d.Insert(4, "X", base)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	assert.Equal(t, "cdXef", d.Text())
}

// A delete straddling the observed position snaps the position to the
// deletion start.
func TestInsertIntoDeletedRange(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "abcdef")
	base := d.Version()

	_, _, _, err := d.Delete(1, 4, base)
	require.NoError(t, err)
	require.Equal(t, "af", d.Text())

	pos, _, err := d.Insert(3, "X", base)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, "aXf", d.Text())
}

func TestInsertPositionClamped(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "ab")

	pos, _, err := d.Insert(99, "X", d.Version())
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	assert.Equal(t, "abX", d.Text())

	pos, _, err = d.Insert(-5, "Y", d.Version())
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.Equal(t, "YabX", d.Text())
}

func TestDeleteRangeClamped(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "abc")

	pos, length, _, err := d.Delete(1, 99, d.Version())
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, length)
	assert.Equal(t, "a", d.Text())
}

// A delete whose range no longer exists still ticks the version so the
// issuing client observes its mutation being sequenced.
func TestCollapsedDeleteBumpsVersion(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "ab")
	base := d.Version()

	_, _, _, err := d.Delete(0, 2, base)
	require.NoError(t, err)
	require.Equal(t, "", d.Text())

	pos, length, version, err := d.Delete(0, 2, base)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 0, length)
	assert.Equal(t, base+2, version)
	assert.Equal(t, "", d.Text())
	assert.Equal(t, base+2, d.HistoryLen())
}

func TestVersionOutOfRange(t *testing.T) {
	d := New("paper", "alice")

	_, _, err := d.Insert(0, "x", 5)
	assert.Error(t, err)
	_, _, _, err = d.Delete(0, 1, -1)
	assert.Error(t, err)
	assert.Equal(t, 0, d.Version())
}

// version is non-decreasing, bumps by exactly one per mutation, and the
// history length always equals it.
func TestHistoryTracksVersion(t *testing.T) {
	d := New("paper", "alice")
	seed(t, d, "one", "two")
	_, _, _, err := d.Delete(0, 3, d.Version())
	require.NoError(t, err)

	assert.Equal(t, 3, d.Version())
	assert.Equal(t, 3, d.HistoryLen())

	h := d.History()
	require.Len(t, h, 3)
	assert.Equal(t, MutationInsert, h[0].Kind)
	assert.Equal(t, MutationDelete, h[2].Kind)
}

func TestAddCollaboratorIdempotent(t *testing.T) {
	d := New("paper", "alice")
	d.AddCollaborator("bob")
	d.AddCollaborator("alice")
	d.AddCollaborator("bob")

	assert.Equal(t, []string{"alice", "bob"}, d.Collaborators())
}

func TestAppendChat(t *testing.T) {
	d := New("paper", "alice")
	d.AppendChat("alice : hi\n")
	d.AppendChat("bob : hello\n")

	chat := d.Chat()
	assert.Equal(t, "alice : hi\nbob : hello\n", chat)
	assert.Regexp(t, regexp.MustCompile(`bob : hello\n$`), chat)
}

func TestGetDateFormat(t *testing.T) {
	d := New("paper", "alice")
	// "H:MM AM|PM , MM/DD", e.g. "5:41 PM , 03/17".
	assert.Regexp(t, `^\d{1,2}:\d{2} (AM|PM) , \d{2}/\d{2}$`, d.GetDate())
}

func TestCreatorAndName(t *testing.T) {
	d := New("paper", "alice")
	assert.Equal(t, "paper", d.Name())
	assert.Equal(t, "alice", d.Creator())
	assert.Equal(t, []string{"alice"}, d.Collaborators())
}
