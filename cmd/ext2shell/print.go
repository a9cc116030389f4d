package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	times "gopkg.in/djherbis/times.v1"

	"github.com/diskfs/go-diskfs/filesystem/ext2"
	diskutil "github.com/diskfs/go-diskfs/util"
)

var (
	dirColor  = color.New(color.FgBlue, color.Bold)
	fileColor = color.New(color.FgWhite)
)

// modeString renders a 9-character rwx permission string the way `ls -l`
// does, prefixed by the file-type character.
func modeString(info ext2.InodeInfo) string {
	typeChar := byte('-')
	if info.IsDirectory() {
		typeChar = 'd'
	}
	perm := info.Mode & 0o777
	bits := "rwxrwxrwx"
	out := make([]byte, 10)
	out[0] = typeChar
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			out[i+1] = bits[i]
		} else {
			out[i+1] = '-'
		}
	}
	return string(out)
}

// printEntry writes one ls row: permissions, inode number, size, mtime and
// name, colorized by entry type when stdout is a terminal.
func printEntry(w *tabwriter.Writer, name string, info ext2.InodeInfo) {
	label := fileColor.Sprint(name)
	if info.IsDirectory() {
		label = dirColor.Sprint(name)
	}
	fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
		modeString(info), info.Number, info.Size,
		info.MTime.Format("Jan _2 15:04"), label)
}

func newEntryWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// printInodeInfo renders a full inodeinfo/stat dump.
func printInodeInfo(info ext2.InodeInfo) {
	kind := "regular file"
	if info.IsDirectory() {
		kind = "directory"
	}
	fmt.Printf("Inode:        %d (%s)\n", info.Number, kind)
	fmt.Printf("Mode:         %s (0%o)\n", modeString(info), info.Mode&0o777)
	fmt.Printf("UID/GID:      %d/%d\n", info.UID, info.GID)
	fmt.Printf("Size:         %d bytes\n", info.Size)
	fmt.Printf("Links:        %d\n", info.LinksCount)
	fmt.Printf("Blocks used:  %d\n", info.BlocksUsed)
	fmt.Printf("Access time:  %s\n", info.ATime.Format(time.RFC3339))
	fmt.Printf("Modify time:  %s\n", info.MTime.Format(time.RFC3339))
	fmt.Printf("Change time:  %s\n", info.CTime.Format(time.RFC3339))
	fmt.Print("Block pointers:\n")
	for i, b := range info.Block {
		label := fmt.Sprintf("direct[%d]", i)
		switch i {
		case 12:
			label = "single-indirect"
		case 13:
			label = "double-indirect"
		case 14:
			label = "triple-indirect"
		}
		fmt.Printf("  %-16s %d\n", label, b)
	}
}

// printDiskInfo renders a diskinfo dump: superblock geometry plus one row
// per group descriptor. imagePath, if non-empty, adds a line of host-side
// file timestamps for the backing image.
func printDiskInfo(fs *ext2.FileSystem, imagePath string) {
	if imagePath != "" {
		if t, err := times.Stat(imagePath); err == nil {
			fmt.Printf("Host image:     %s (modified %s)\n", imagePath, t.ModTime().Format(time.RFC3339))
			if t.HasBirthTime() {
				fmt.Printf("Host created:   %s\n", t.BirthTime().Format(time.RFC3339))
			}
		}
	}
	fmt.Printf("Volume name:    %q\n", fs.Label())
	fmt.Printf("Block size:     %d\n", fs.BlockSize())
	fmt.Printf("Blocks:         %d total, %d free\n", fs.BlocksCount(), fs.FreeBlocksCount())
	fmt.Printf("Inodes:         %d total, %d free\n", fs.InodesCount(), fs.FreeInodesCount())
	fmt.Printf("Blocks/group:   %d\n", fs.BlocksPerGroup())
	fmt.Printf("Inodes/group:   %d\n", fs.InodesPerGroup())
	fmt.Printf("Groups:         %d\n", fs.GroupCount())
	if lm := fs.LastMounted(); lm != "" {
		fmt.Printf("Last mounted:   %s\n", lm)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Group\tBlockBitmap\tInodeBitmap\tInodeTable\tFreeBlocks\tFreeInodes\tUsedDirs")
	for g := uint32(0); g < fs.GroupCount(); g++ {
		gd, err := fs.GroupDescriptor(g)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			gd.Group, gd.BlockBitmap, gd.InodeBitmap, gd.InodeTable,
			gd.FreeBlocksCount, gd.FreeInodesCount, gd.UsedDirsCount)
	}
	w.Flush()
}

// printHexDump renders a hex+ASCII dump of a raw byte slice.
func printHexDump(b []byte) {
	fmt.Print(diskutil.DumpByteSlice(b, 16, true, true, false, nil))
}
