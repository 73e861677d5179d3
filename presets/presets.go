// Package presets holds a table of named SSFS volume geometries — total
// block count and inode count pairs worth remembering a name for, the way a
// floppy disk format has a name instead of a raw geometry. Grounded on
// disks/disks.go's embedded-CSV-plus-gocsv approach, adapted from disk
// geometries (tracks/heads/sectors) to SSFS volume geometries
// (blocks/inodes).
package presets

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Geometry describes the block and inode counts to pass to ssfs.Format and
// to size a backing vdisk.File or vdisk.Memory with.
type Geometry struct {
	Name        string `csv:"name"`
	Slug        string `csv:"slug"`
	TotalBlocks uint32 `csv:"total_blocks"`
	Inodes      uint32 `csv:"inodes"`
	Notes       string `csv:"notes"`
}

// TotalSizeBytes gives the size, in bytes, of a volume formatted with this
// geometry. BlockSize is passed in rather than imported to keep this package
// free of a dependency on the core package's constants.
func (g *Geometry) TotalSizeBytes(blockSize int64) int64 {
	return int64(g.TotalBlocks) * blockSize
}

//go:embed presets.csv
var rawCSV string

var geometries map[string]Geometry

// Get looks up a named geometry by slug.
func Get(slug string) (Geometry, error) {
	geometry, ok := geometries[slug]
	if ok {
		return geometry, nil
	}
	return Geometry{}, fmt.Errorf("no predefined volume geometry exists with slug %q", slug)
}

// Names returns every known preset slug.
func Names() []string {
	names := make([]string, 0, len(geometries))
	for slug := range geometries {
		names = append(names, slug)
	}
	return names
}

func init() {
	geometries = make(map[string]Geometry)
	reader := strings.NewReader(rawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Geometry) error {
		if _, exists := geometries[row.Slug]; exists {
			return fmt.Errorf("duplicate definition for volume geometry %q", row.Slug)
		}
		geometries[row.Slug] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}
