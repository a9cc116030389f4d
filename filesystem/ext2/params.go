package ext2

import "github.com/google/uuid"

// Params are the optional, caller-supplied knobs for Create (mkfs). Any zero
// field is replaced with a real-EXT2-compatible default in newSuperblock.
type Params struct {
	UUID           *uuid.UUID
	VolumeName     string
	BlocksPerGroup uint32
	InodeRatio     int64
	InodeCount     uint32
	// ReservedBlocksPercent is the percentage of blocks reserved for the
	// superuser, mirroring mke2fs -m. Defaults to 5.
	ReservedBlocksPercent uint8
}

func (p *Params) reservedPercent() uint8 {
	if p.ReservedBlocksPercent == 0 {
		return 5
	}
	return p.ReservedBlocksPercent
}
