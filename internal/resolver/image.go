package resolver

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// ModuleImage is a read-only memory-mapped view of a module's on-disk
// image or PDB file: loading a large kernel PDB by mmap rather than a
// full read avoids a multi-hundred-MB copy per module.
type ModuleImage struct {
	file *os.File
	data mmap.MMap
}

// OpenModuleImage mmaps path read-only. Callers must Close it once the
// Entry built from it no longer needs to reference raw bytes (PDB
// parsing typically happens once at load time and the mapping can be
// dropped immediately after).
func OpenModuleImage(path string) (*ModuleImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening module image %s", path)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "mmapping module image %s", path)
	}
	return &ModuleImage{file: f, data: data}, nil
}

func (m *ModuleImage) Bytes() []byte { return m.data }

func (m *ModuleImage) Close() error {
	unmapErr := m.data.Unmap()
	closeErr := m.file.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
