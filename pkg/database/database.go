package database

import (
	"bytes"
	"io/ioutil"

	"github.com/freefilesync/ffsync/pkg/afs"
)

// FileName is the name of the sync-state database file stored at the root of
// every base folder.
const FileName = "sync.ffs_db"

// tempSuffix names the transactional staging file written before a save is
// committed.
const tempSuffix = ".tmp"

// Load reads and decodes the sync-state database at the root of dir, then
// extracts and decodes the entry belonging to partnerUUID. It fails with an
// afs ErrorKindDatabaseNotExisting FileError if the database file itself is
// absent or if it has no entry for partnerUUID.
func Load(device afs.Device, dir afs.RelativePath, partnerUUID string) (DirInformation, error) {
	path := dir.Join(FileName)

	stream, err := device.OpenInput(path)
	if err != nil {
		if fe, ok := err.(*afs.FileError); ok && fe.Kind == afs.ErrorKindNotExisting {
			return DirInformation{}, afs.NewFileError(afs.ErrorKindDatabaseNotExisting,
				"sync-state database does not exist", err)
		}
		return DirInformation{}, err
	}
	defer stream.Close()

	raw, err := ioutil.ReadAll(stream)
	if err != nil {
		return DirInformation{}, err
	}

	file, err := Decode(raw)
	if err != nil {
		return DirInformation{}, err
	}

	payload, ok := file.Partners[partnerUUID]
	if !ok {
		return DirInformation{}, afs.NewFileError(afs.ErrorKindDatabaseNotExisting,
			"sync-state database has no entry for partner", nil)
	}

	return DecodeDirInformation(payload)
}

// Save writes a database on each of the two sides, recording the other side
// as the partner. Each side's database retains any entries belonging to
// partners other than the other side (so that a folder pair participating in
// more than two-way synchronization keeps each partner's history
// independently). Each side's new content is first written to
// FileName+tempSuffix, and only once both sides have staged successfully are
// they renamed over their final names, one side after the other. A failure
// while staging leaves both old databases in place; a crash between or during
// the two renames can leave one side's database new and the other's old. A side whose newly encoded payload is
// byte-identical to what's already on disk for that partner is left
// untouched entirely.
func Save(leftDevice afs.Device, leftDir afs.RelativePath, leftUUID string, leftInfo DirInformation,
	rightDevice afs.Device, rightDir afs.RelativePath, rightUUID string, rightInfo DirInformation) error {

	leftPayload, err := EncodeDirInformation(leftInfo)
	if err != nil {
		return err
	}
	rightPayload, err := EncodeDirInformation(rightInfo)
	if err != nil {
		return err
	}

	left, err := stageSide(leftDevice, leftDir, leftUUID, rightUUID, rightPayload)
	if err != nil {
		return err
	}
	right, err := stageSide(rightDevice, rightDir, rightUUID, leftUUID, leftPayload)
	if err != nil {
		if left != nil {
			left.cleanup()
		}
		return err
	}

	if left != nil {
		if err := left.commit(); err != nil {
			if right != nil {
				right.cleanup()
			}
			return err
		}
	}
	if right != nil {
		if err := right.commit(); err != nil {
			return err
		}
	}
	return nil
}

// stagedSide is a database write staged on disk at tempPath, ready to be
// committed (renamed into place over path) or cleaned up (removed) once the
// other side's write is known to have staged or failed.
type stagedSide struct {
	device   afs.Device
	path     afs.RelativePath
	tempPath afs.RelativePath
}

func (s *stagedSide) commit() error {
	s.device.RemoveFile(s.path)
	return s.device.RenameItem(s.tempPath, s.device, s.path)
}

func (s *stagedSide) cleanup() {
	s.device.RemoveFile(s.tempPath)
}

// stageSide writes the database rooted at dir, recording ownUUID as its own
// identity and partnerPayload as the encoded entry for partnerUUID
// (preserving any other partner entries already present), to a temporary
// file. It returns nil, nil if the newly encoded payload is byte-identical to
// what's already on disk for that partner, since there is then nothing to
// commit.
func stageSide(device afs.Device, dir afs.RelativePath, ownUUID, partnerUUID string, partnerPayload []byte) (*stagedSide, error) {
	path := dir.Join(FileName)

	file := File{OwnUUID: ownUUID, Partners: map[string][]byte{}}
	if existing, err := readExisting(device, path); err == nil {
		file = existing
		file.OwnUUID = ownUUID
	}

	if current, ok := file.Partners[partnerUUID]; ok && bytes.Equal(current, partnerPayload) {
		return nil, nil
	}
	file.Partners[partnerUUID] = partnerPayload

	encoded, err := Encode(file)
	if err != nil {
		return nil, err
	}

	tempPath := dir.Join(FileName + tempSuffix)
	size := int64(len(encoded))
	out, err := device.OpenOutput(tempPath, &size, nil)
	if err != nil {
		return nil, err
	}
	if _, err := out.Write(encoded); err != nil {
		out.Close()
		device.RemoveFile(tempPath)
		return nil, err
	}
	if err := out.Finalize(); err != nil {
		out.Close()
		device.RemoveFile(tempPath)
		return nil, err
	}
	if err := out.Close(); err != nil {
		device.RemoveFile(tempPath)
		return nil, err
	}

	return &stagedSide{device: device, path: path, tempPath: tempPath}, nil
}

func readExisting(device afs.Device, path afs.RelativePath) (File, error) {
	stream, err := device.OpenInput(path)
	if err != nil {
		return File{}, err
	}
	defer stream.Close()

	raw, err := ioutil.ReadAll(stream)
	if err != nil {
		return File{}, err
	}
	return Decode(raw)
}
