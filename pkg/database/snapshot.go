package database

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"
)

// FileEntry is a database record for a file known to be in sync as of the
// last successful run: the short name plus each side's size and
// modification time. LeftFileID/RightFileID additionally retain each side's
// device-stable file identity as of that run, which the direction resolver's
// move detection (spec §4.G) uses to recognize a rename even though the
// current LEFT_ONLY/RIGHT_ONLY candidates it's matching carry no name in
// common — see DESIGN.md for why this extends the plain wire layout
// described for the format.
type FileEntry struct {
	Name         string
	LeftModTime  int64
	LeftSize     uint64
	LeftFileID   string
	RightModTime int64
	RightSize    uint64
	RightFileID  string
}

// SymlinkEntry is a database record for a symlink known to be in sync: each
// side's modification time and target.
type SymlinkEntry struct {
	Name         string
	LeftModTime  int64
	LeftTarget   string
	RightModTime int64
	RightTarget  string
	Type         int32
}

// FolderEntry is a database record for a folder: the short name plus a
// status flag distinguishing a real, attribute-bearing folder from a "straw
// man" placeholder used only to anchor tracked children.
type FolderEntry struct {
	Name       string
	StrawMan   bool
	Files      []FileEntry
	Symlinks   []SymlinkEntry
	Subfolders []FolderEntry
}

// DirInformation is one partner's full last-in-sync snapshot for a base
// folder: the comparison variant that produced it, the filter that was
// active, and the root-level tree.
type DirInformation struct {
	ComparisonVariant string
	FilterHard        []byte
	Files             []FileEntry
	Symlinks          []SymlinkEntry
	Folders           []FolderEntry
}

// encodeLevel writes one level of the tree: files, then symlinks,
// then folders, each group terminated by a false sentinel boolean, with
// nested folders recursing immediately after their own record.
func encodeLevel(w io.Writer, files []FileEntry, symlinks []SymlinkEntry, folders []FolderEntry) error {
	for _, f := range files {
		if err := writeBool(w, true); err != nil {
			return err
		}
		if err := writeString(w, f.Name); err != nil {
			return err
		}
		if err := writeI64(w, f.LeftModTime); err != nil {
			return err
		}
		if err := writeU64(w, f.LeftSize); err != nil {
			return err
		}
		if err := writeString(w, f.LeftFileID); err != nil {
			return err
		}
		if err := writeI64(w, f.RightModTime); err != nil {
			return err
		}
		if err := writeU64(w, f.RightSize); err != nil {
			return err
		}
		if err := writeString(w, f.RightFileID); err != nil {
			return err
		}
	}
	if err := writeBool(w, false); err != nil {
		return err
	}

	for _, s := range symlinks {
		if err := writeBool(w, true); err != nil {
			return err
		}
		if err := writeString(w, s.Name); err != nil {
			return err
		}
		if err := writeI64(w, s.LeftModTime); err != nil {
			return err
		}
		if err := writeString(w, s.LeftTarget); err != nil {
			return err
		}
		if err := writeI64(w, s.RightModTime); err != nil {
			return err
		}
		if err := writeString(w, s.RightTarget); err != nil {
			return err
		}
		if err := writeI32(w, s.Type); err != nil {
			return err
		}
	}
	if err := writeBool(w, false); err != nil {
		return err
	}

	for _, folder := range folders {
		if err := writeBool(w, true); err != nil {
			return err
		}
		if err := writeString(w, folder.Name); err != nil {
			return err
		}
		if err := writeBool(w, folder.StrawMan); err != nil {
			return err
		}
		if err := encodeLevel(w, folder.Files, folder.Symlinks, folder.Subfolders); err != nil {
			return err
		}
	}
	return writeBool(w, false)
}

func decodeLevel(r io.Reader) ([]FileEntry, []SymlinkEntry, []FolderEntry, error) {
	var files []FileEntry
	for {
		more, err := readBool(r)
		if err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if !more {
			break
		}
		var f FileEntry
		if f.Name, err = readString(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if f.LeftModTime, err = readI64(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if f.LeftSize, err = readU64(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if f.LeftFileID, err = readString(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if f.RightModTime, err = readI64(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if f.RightSize, err = readU64(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if f.RightFileID, err = readString(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		files = append(files, f)
	}

	var symlinks []SymlinkEntry
	for {
		more, err := readBool(r)
		if err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if !more {
			break
		}
		var s SymlinkEntry
		if s.Name, err = readString(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if s.LeftModTime, err = readI64(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if s.LeftTarget, err = readString(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if s.RightModTime, err = readI64(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if s.RightTarget, err = readString(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if s.Type, err = readI32(r); err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		symlinks = append(symlinks, s)
	}

	var folders []FolderEntry
	for {
		more, err := readBool(r)
		if err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		if !more {
			break
		}
		var folder FolderEntry
		name, err := readString(r)
		if err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		strawMan, err := readBool(r)
		if err != nil {
			return nil, nil, nil, wrapReadErr(err)
		}
		childFiles, childSymlinks, childFolders, err := decodeLevel(r)
		if err != nil {
			return nil, nil, nil, err
		}
		folder.Name = name
		folder.StrawMan = strawMan
		folder.Files = childFiles
		folder.Symlinks = childSymlinks
		folder.Subfolders = childFolders
		folders = append(folders, folder)
	}

	return files, symlinks, folders, nil
}

// encodeDirInformation serializes one partner's DirInformation, including the
// comparison variant that produced it (spec §3: "the snapshot also records
// which comparison variant produced it").
func encodeDirInformation(w io.Writer, info DirInformation) error {
	if err := writeString(w, info.ComparisonVariant); err != nil {
		return err
	}
	if err := writeBlob(w, info.FilterHard); err != nil {
		return err
	}
	return encodeLevel(w, info.Files, info.Symlinks, info.Folders)
}

func decodeDirInformation(r io.Reader) (DirInformation, error) {
	var info DirInformation
	variant, err := readString(r)
	if err != nil {
		return info, wrapReadErr(err)
	}
	filterHard, err := readBlob(r)
	if err != nil {
		return info, wrapReadErr(err)
	}
	files, symlinks, folders, err := decodeLevel(r)
	if err != nil {
		return info, err
	}
	info.ComparisonVariant = variant
	info.FilterHard = filterHard
	info.Files = files
	info.Symlinks = symlinks
	info.Folders = folders
	return info, nil
}

// File is the full decoded content of a single sync.ffs_db file: this
// side's own UUID and a map from partner UUID to that partner's
// DirInformation payload bytes (kept as raw bytes, not decoded eagerly,
// since a run only ever needs its own partner's entry).
type File struct {
	OwnUUID  string
	Partners map[string][]byte
}

// Encode serializes f into the on-disk wire format: magic header, then a
// zlib-compressed payload of (version, own UUID, partner count, (partner
// UUID, partner payload)*).
func Encode(f File) ([]byte, error) {
	var payload bytes.Buffer
	if err := writeU32(&payload, FormatVersion); err != nil {
		return nil, err
	}
	if err := writeString(&payload, f.OwnUUID); err != nil {
		return nil, err
	}
	if err := writeU32(&payload, uint32(len(f.Partners))); err != nil {
		return nil, err
	}
	for uuid, partnerPayload := range f.Partners {
		if err := writeString(&payload, uuid); err != nil {
			return nil, err
		}
		if err := writeBlob(&payload, partnerPayload); err != nil {
			return nil, err
		}
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(Magic)
	out.Write(compressed.Bytes())
	return out.Bytes(), nil
}

// Decode parses the on-disk wire format produced by Encode.
func Decode(data []byte) (File, error) {
	var result File

	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], Magic) {
		return result, errors.New("not a sync-state database file")
	}

	zr, err := zlib.NewReader(bytes.NewReader(data[len(Magic):]))
	if err != nil {
		return result, errors.Wrap(err, "unable to decompress database payload")
	}
	defer zr.Close()

	version, err := readU32(zr)
	if err != nil {
		return result, wrapReadErr(err)
	}
	if version != FormatVersion {
		return result, errors.Errorf("unsupported database format version %d", version)
	}

	ownUUID, err := readString(zr)
	if err != nil {
		return result, wrapReadErr(err)
	}

	partnerCount, err := readU32(zr)
	if err != nil {
		return result, wrapReadErr(err)
	}

	partners := make(map[string][]byte, partnerCount)
	for i := uint32(0); i < partnerCount; i++ {
		partnerUUID, err := readString(zr)
		if err != nil {
			return result, wrapReadErr(err)
		}
		partnerPayload, err := readBlob(zr)
		if err != nil {
			return result, wrapReadErr(err)
		}
		partners[partnerUUID] = partnerPayload
	}

	result.OwnUUID = ownUUID
	result.Partners = partners
	return result, nil
}

// EncodeDirInformation exposes the per-partner payload codec so that callers
// can produce and consume the []byte stored in File.Partners.
func EncodeDirInformation(info DirInformation) ([]byte, error) {
	var buffer bytes.Buffer
	if err := encodeDirInformation(&buffer, info); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DecodeDirInformation is the inverse of EncodeDirInformation.
func DecodeDirInformation(payload []byte) (DirInformation, error) {
	return decodeDirInformation(bytes.NewReader(payload))
}
