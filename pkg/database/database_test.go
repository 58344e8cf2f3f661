package database

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestEncodeDecodeRoundTrip checks the decode∘encode=identity property (spec
// §8) over a tree exercising every level: files, symlinks, and a nested
// folder, compared deeply with go-cmp rather than field-by-field so a
// regression in any nested value is caught.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	info := DirInformation{
		ComparisonVariant: "content",
		FilterHard:        []byte("*.txt"),
		Files: []FileEntry{
			{Name: "a.txt", LeftModTime: 100, LeftSize: 10, RightModTime: 100, RightSize: 10},
		},
		Symlinks: []SymlinkEntry{
			{Name: "link", LeftModTime: 50, LeftTarget: "a.txt", RightModTime: 50, RightTarget: "a.txt", Type: 1},
		},
		Folders: []FolderEntry{
			{
				Name: "sub",
				Files: []FileEntry{
					{Name: "b.txt", LeftModTime: 200, LeftSize: 20, RightModTime: 200, RightSize: 20},
				},
			},
		},
	}

	payload, err := EncodeDirInformation(info)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeDirInformation(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if diff := cmp.Diff(info, decoded); diff != "" {
		t.Fatalf("decode∘encode is not identity (-want +got):\n%s", diff)
	}
}

func TestFileEncodeDecodeRoundTrip(t *testing.T) {
	leftPayload, err := EncodeDirInformation(DirInformation{
		Files: []FileEntry{{Name: "x", LeftSize: 1, RightSize: 1}},
	})
	if err != nil {
		t.Fatalf("encode dir info: %v", err)
	}

	f := File{
		OwnUUID: "left-uuid",
		Partners: map[string][]byte{
			"right-uuid": leftPayload,
		},
	}

	encoded, err := Encode(f)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !bytes.HasPrefix(encoded, Magic) {
		t.Fatal("expected encoded database to start with magic header")
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.OwnUUID != "left-uuid" {
		t.Fatalf("unexpected own uuid: %q", decoded.OwnUUID)
	}
	payload, ok := decoded.Partners["right-uuid"]
	if !ok {
		t.Fatal("expected partner entry to round-trip")
	}
	info, err := DecodeDirInformation(payload)
	if err != nil {
		t.Fatalf("decode dir info: %v", err)
	}
	if len(info.Files) != 1 || info.Files[0].Name != "x" {
		t.Fatalf("unexpected round-tripped files: %+v", info.Files)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte("not a database")); err == nil {
		t.Fatal("expected error for bad magic header")
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	f := File{OwnUUID: "u", Partners: map[string][]byte{"p": {1, 2, 3}}}
	encoded, err := Encode(f)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := Decode(encoded[:len(encoded)-2]); err == nil {
		t.Fatal("expected error decoding a truncated payload")
	}
}
