package codegen

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

// writeFileAtomic writes data to filename via a temp file in the same
// directory and a rename, so readers never observe a partial file
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	f, err := os.CreateTemp(dir, "."+base+".tmp.*")
	if err != nil {
		return errors.WrapIO(err, "failed to create temp file for %s", filename)
	}
	tmp := f.Name()

	ok := false
	defer func() {
		_ = f.Close()
		if !ok {
			_ = os.Remove(tmp)
		}
	}()

	if runtime.GOOS != "windows" {
		if err := f.Chmod(perm); err != nil {
			return errors.WrapIO(err, "failed to set mode of %s", tmp)
		}
	}
	if _, err := f.Write(data); err != nil {
		return errors.WrapIO(err, "failed to write %s", tmp)
	}
	if err := f.Sync(); err != nil {
		return errors.WrapIO(err, "failed to sync %s", tmp)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO(err, "failed to close %s", tmp)
	}

	// os.Rename does not replace an existing destination on Windows
	if runtime.GOOS == "windows" {
		_ = os.Remove(filename)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return errors.WrapIO(err, "failed to move %s into place", filename)
	}
	ok = true
	return nil
}
