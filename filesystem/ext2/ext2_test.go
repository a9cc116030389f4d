package ext2_test

import (
	"io"
	"os"
	"testing"

	"github.com/diskfs/go-diskfs/filesystem/ext2"
	"github.com/diskfs/go-diskfs/testhelper"
	"github.com/stretchr/testify/require"
)

func newMountedFS(t *testing.T) *ext2.FileSystem {
	t.Helper()
	const blockSize = 1024
	const blocks = 4096
	mem := testhelper.NewMemStorage(blockSize * blocks)
	fs, err := ext2.Create(mem, blockSize*blocks, 0, blockSize, &ext2.Params{VolumeName: "scenario"})
	require.NoError(t, err)
	return fs
}

// Scenario 1: a fresh mount lists exactly "lost+found" at root ("." and ".."
// are filtered from ReadDir).
func TestScenarioFreshMountListsRootEntries(t *testing.T) {
	fs := newMountedFS(t)
	infos, err := fs.ReadDir("/")
	require.NoError(t, err)

	var names []string
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	require.ElementsMatch(t, []string{"lost+found"}, names)
}

// Scenario 2: mkdir /a, then /a contains only "." and "..", and the link
// count on / goes up by one.
func TestScenarioMkdirUpdatesLinkCounts(t *testing.T) {
	fs := newMountedFS(t)

	rootBefore, err := fs.Stat("/")
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/a"))

	rootAfter, err := fs.Stat("/")
	require.NoError(t, err)
	require.Equal(t, rootBefore.LinksCount+1, rootAfter.LinksCount)

	infos, err := fs.ReadDir("/a")
	require.NoError(t, err)
	require.Empty(t, infos) // "." and ".." are filtered from ReadDir

	require.Equal(t, "scenario", fs.Label())
}

// Scenario 3: create /a/f, write a 13,000-byte repeating pattern, copy it to
// /a/g, and confirm byte-for-byte equality. This crosses from the direct
// block range into the single-indirect range (13,000 > 12*1024).
func TestScenarioCopyLargeFileThroughIndirectRange(t *testing.T) {
	fs := newMountedFS(t)
	require.NoError(t, fs.Mkdir("/a"))

	pattern := make([]byte, 13000)
	for i := range pattern {
		pattern[i] = byte(i % 256)
	}

	wf, err := fs.OpenFile("/a/f", os.O_CREATE|os.O_WRONLY)
	require.NoError(t, err)
	n, err := wf.Write(pattern)
	require.NoError(t, err)
	require.Equal(t, len(pattern), n)
	require.NoError(t, wf.Close())

	rf, err := fs.OpenFile("/a/f", os.O_RDONLY)
	require.NoError(t, err)
	src, err := io.ReadAll(rf)
	require.NoError(t, err)
	require.Equal(t, pattern, src)

	gf, err := fs.OpenFile("/a/g", os.O_CREATE|os.O_WRONLY)
	require.NoError(t, err)
	_, err = gf.Write(src)
	require.NoError(t, err)
	require.NoError(t, gf.Close())

	infos, err := fs.ReadDir("/a")
	require.NoError(t, err)
	var gSize int64
	for _, fi := range infos {
		if fi.Name() == "g" {
			gSize = fi.Size()
		}
	}
	require.EqualValues(t, 13000, gSize)

	cat, err := fs.OpenFile("/a/g", os.O_RDONLY)
	require.NoError(t, err)
	got, err := io.ReadAll(cat)
	require.NoError(t, err)
	require.Equal(t, pattern, got)
}

// Scenario 4: rmdir a non-empty directory fails; unlinking its contents lets
// rmdir succeed afterward.
func TestScenarioRmdirRequiresEmpty(t *testing.T) {
	fs := newMountedFS(t)
	require.NoError(t, fs.Mkdir("/a"))
	require.NoError(t, fs.Mknod("/a/f", 0, 0))

	err := fs.Remove("/a")
	require.ErrorIs(t, err, ext2.ErrNotEmpty)

	require.NoError(t, fs.Remove("/a/f"))
	require.NoError(t, fs.Remove("/a"))

	infos, err := fs.ReadDir("/")
	require.NoError(t, err)
	for _, fi := range infos {
		require.NotEqual(t, "a", fi.Name())
	}
}

// Scenario 5: hard-linking then unlinking the original keeps the new name
// readable until its own link count reaches zero.
func TestScenarioLinkSurvivesOriginalUnlink(t *testing.T) {
	fs := newMountedFS(t)
	require.NoError(t, fs.Mknod("/a", 0, 0))
	require.NoError(t, fs.Link("/a", "/b"))
	require.NoError(t, fs.Remove("/a"))

	_, err := fs.OpenFile("/b", os.O_RDONLY)
	require.NoError(t, err)

	require.NoError(t, fs.Remove("/b"))
	_, err = fs.OpenFile("/b", os.O_RDONLY)
	require.ErrorIs(t, err, ext2.ErrNotFound)
}

// Scenario 6: addressing a logical block beyond the triple-indirect range
// fails with the documented diagnostic rather than silently wrapping.
func TestScenarioBeyondTripleIndirectRangeFails(t *testing.T) {
	fs := newMountedFS(t)
	require.NoError(t, fs.Mknod("/huge", 0, 0))

	wf, err := fs.OpenFile("/huge", os.O_WRONLY)
	require.NoError(t, err)
	defer wf.Close()

	// seeking to an offset whose logical block index sits just past the
	// triple-indirect range and writing there must fail, not silently wrap.
	const blockSize = 1024
	pointersPerBlock := int64(blockSize / 4)
	beyondBlock := int64(12) + pointersPerBlock + pointersPerBlock*pointersPerBlock + pointersPerBlock*pointersPerBlock*pointersPerBlock
	_, err = wf.Seek(beyondBlock*blockSize, io.SeekStart)
	require.NoError(t, err)

	_, err = wf.Write([]byte("x"))
	require.ErrorIs(t, err, ext2.ErrUnaddressableBlock)
}

// Scenario 7: renaming a directory across parents retargets its ".." entry
// and moves its contribution to each parent's link count.
func TestScenarioRenameDirectoryAcrossParentsFixesUpDotDot(t *testing.T) {
	fs := newMountedFS(t)
	require.NoError(t, fs.Mkdir("/a"))
	require.NoError(t, fs.Mkdir("/b"))
	require.NoError(t, fs.Mkdir("/a/sub"))

	aBefore, err := fs.Stat("/a")
	require.NoError(t, err)
	bBefore, err := fs.Stat("/b")
	require.NoError(t, err)

	require.NoError(t, fs.Rename("/a/sub", "/b/sub"))

	dotdot, err := fs.Stat("/b/sub/..")
	require.NoError(t, err)
	bAfter, err := fs.Stat("/b")
	require.NoError(t, err)
	require.Equal(t, bAfter.Number, dotdot.Number)

	aAfter, err := fs.Stat("/a")
	require.NoError(t, err)
	require.Equal(t, aBefore.LinksCount-1, aAfter.LinksCount)
	require.Equal(t, bBefore.LinksCount+1, bAfter.LinksCount)

	_, err = fs.Stat("/a/sub")
	require.ErrorIs(t, err, ext2.ErrNotFound)
}
