package image

import (
	"encoding/binary"
	"strings"
)

// Inode is the decoded form of one on-disk inode block: either a directory
// (Type == TypeDir, Table holds child inode block indices) or a file
// (Type == TypeFile, Table holds data block indices, in order).
type Inode struct {
	Name     string
	Type     Type
	Created  int64
	Modified int64
	Owner    string
	Table    []uint16
}

// Encode serialises ino into a fresh BlockSize-byte block, per spec.md §3's
// fixed offsets. It rejects names/owners/tables that exceed their field
// capacity rather than silently truncating.
func (ino *Inode) Encode() ([]byte, error) {
	name := []byte(ino.Name)
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	owner := []byte(ino.Owner)
	if len(owner) > MaxOwnerLen {
		return nil, ErrOwnerTooLong
	}
	if len(ino.Table) > MaxTableEntries {
		return nil, ErrTableTooLong
	}

	buf := make([]byte, BlockSize)
	copy(buf[offName:offName+MaxNameLen], name)
	binary.BigEndian.PutUint16(buf[offType:], uint16(ino.Type))
	binary.BigEndian.PutUint32(buf[offCreated:], uint32(ino.Created))
	binary.BigEndian.PutUint32(buf[offModified:], uint32(ino.Modified))
	copy(buf[offOwner:offOwner+MaxOwnerLen], owner)

	pos := offTable
	for _, block := range ino.Table {
		binary.BigEndian.PutUint16(buf[pos:], block)
		pos += 2
	}
	for i := len(ino.Table); i < tableSlots; i++ {
		binary.BigEndian.PutUint16(buf[pos:], sentinel)
		pos += 2
	}

	return buf, nil
}

// Decode reverses Encode: it strips trailing NULs from name and owner, and
// filters sentinel entries out of the table, preserving on-disk order.
func Decode(block []byte) Inode {
	name := strings.TrimRight(string(block[offName:offName+MaxNameLen]), "\x00")
	owner := strings.TrimRight(string(block[offOwner:offOwner+MaxOwnerLen]), "\x00")

	ino := Inode{
		Name:     name,
		Type:     Type(binary.BigEndian.Uint16(block[offType:])),
		Created:  int64(binary.BigEndian.Uint32(block[offCreated:])),
		Modified: int64(binary.BigEndian.Uint32(block[offModified:])),
		Owner:    owner,
	}

	pos := offTable
	for i := 0; i < tableSlots; i++ {
		v := binary.BigEndian.Uint16(block[pos:])
		pos += 2
		if v == sentinel {
			continue
		}
		ino.Table = append(ino.Table, v)
	}

	return ino
}

// GetInode reads and decodes the inode at block idx. idx must fall within
// [InodeRegionStart, 2776], the addressable inode range (spec.md §7); the
// bitmap's own partitioning already guarantees no inode-kind allocation can
// return an index above 2775 (see DESIGN.md), so this is a defensive bound
// on top of that, not a substitute for it.
func (d *Device) GetInode(idx uint16) (Inode, error) {
	if idx < InodeRegionStart || idx > 2776 {
		return Inode{}, ErrIndexOutOfRange
	}
	return Decode(d.ReadBlock(idx)), nil
}

// SetInode encodes ino and writes it to block idx.
func (d *Device) SetInode(idx uint16, ino Inode) error {
	encoded, err := ino.Encode()
	if err != nil {
		return err
	}
	return d.WriteBytes(int64(idx)*BlockSize, encoded)
}
