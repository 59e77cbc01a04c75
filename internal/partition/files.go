package partition

import (
	"fmt"
	"os"
	"path/filepath"
)

// IterationDir - Returns the directory holding the partition files of one iteration
func IterationDir(scratchDir string, iteration int64) string {
	return filepath.Join(scratchDir, fmt.Sprintf("iter-%04d", iteration))
}

// FileName - Returns the name of the file holding one partition of one iteration.
// The iteration index is part of the path so files from different iterations never collide.
func FileName(scratchDir string, iteration, partition int64) string {
	return filepath.Join(IterationDir(scratchDir, iteration), fmt.Sprintf("part-%06d.bin", partition))
}

// RemoveIterationFiles - Removes the directory of one iteration including all its partition files
func RemoveIterationFiles(scratchDir string, iteration int64) (err error) {
	dir := IterationDir(scratchDir, iteration)
	if stat, ok := os.Stat(dir); ok == nil {
		if !stat.IsDir() {
			err = fmt.Errorf("iteration path %s is not a directory", dir)
			return
		}
		err = os.RemoveAll(dir)
		if err != nil {
			err = fmt.Errorf("error while removing iteration directory: %s", err)
			return
		}
	}

	return
}
