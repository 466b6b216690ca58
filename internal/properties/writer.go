package properties

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
)

// DefaultStagingName is the file written before it is moved into the checkout.
const DefaultStagingName = "properties"

// Writer stages a Record on disk and moves it to its destination.
type Writer struct {
	StagingPath string
	DryRun      bool
}

func NewWriter(stagingPath string, dryRun bool) *Writer {
	if stagingPath == "" {
		stagingPath = DefaultStagingName
	}
	return &Writer{StagingPath: stagingPath, DryRun: dryRun}
}

// Write renders record to the staging file, logs it and replaces destination with it.
func (w *Writer) Write(record *Record, destination string) error {
	if err := record.Validate(); err != nil {
		return err
	}
	content := record.Render()

	logger.User.Infof("Properties for %s:", destination)
	for _, e := range record.Entries() {
		logger.User.Output("properties", e.Key+"="+e.Value)
	}

	if w.DryRun {
		logger.Op.Debugf("dry run: not writing %s", w.StagingPath)
		return nil
	}

	if err := os.WriteFile(w.StagingPath, []byte(content), 0o644); err != nil {
		return harnesserrors.NewPropertiesWriteError(w.StagingPath, err)
	}

	if err := move(w.StagingPath, destination); err != nil {
		return harnesserrors.NewPropertiesRelocateError(w.StagingPath, destination, err)
	}

	logger.Op.WithFields(map[string]interface{}{
		"from": w.StagingPath,
		"to":   destination,
	}).Debug("properties relocated")
	return nil
}

// move renames src to dst, copying when they sit on different filesystems.
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("copying across filesystems: %w", err)
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), ".properties-*")
	if err != nil {
		return err
	}
	tmp := out.Name()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
