package etherdfs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DOS file attribute bits, shared with FoundFile.Attr and OpenFile.FileAttr.
const (
	AttrReadOnly uint8 = 1 << 0
	AttrHidden   uint8 = 1 << 1
	AttrSystem   uint8 = 1 << 2
	AttrVolume   uint8 = 1 << 3
	AttrDir      uint8 = 1 << 4
	AttrArchive  uint8 = 1 << 5
)

// PreviewDirectory walks root on fs and returns one FoundFile per entry,
// built the same way FindFirst/FindNext populate a ScanCursor's found-entry
// area, so a caller can sanity-check what a mapped drive would expose
// without needing a live server. It exists purely as a local diagnostic;
// no wire traffic is involved and no drive mapping is required.
func PreviewDirectory(fs afero.Fs, root string) ([]FoundFile, error) {
	var out []FoundFile

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		out = append(out, FoundFile{
			Name:       FCBName(filepath.Base(path)),
			Attr:       attrForFileInfo(info),
			Time:       dosTime(info.ModTime()),
			Date:       dosDate(info.ModTime()),
			StartClstr: 0,
			Size:       uint32(info.Size()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func attrForFileInfo(info os.FileInfo) uint8 {
	var attr uint8
	if info.IsDir() {
		attr |= AttrDir
	} else {
		attr |= AttrArchive
	}
	if info.Mode().Perm()&0200 == 0 {
		attr |= AttrReadOnly
	}
	return attr
}

// dosTime packs hour/minute/(second/2) into the 16-bit DOS time format.
func dosTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}

// dosDate packs (year-1980)/month/day into the 16-bit DOS date format.
func dosDate(t time.Time) uint16 {
	year := t.Year() - 1980
	if year < 0 {
		year = 0
	}
	return uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}
