package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// workbookExtensions are the spreadsheet formats the reader can open.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// IsWorkbookName reports whether name has a supported workbook extension.
func IsWorkbookName(name string) bool {
	return workbookExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsCSVName reports whether name has a .csv extension.
func IsCSVName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// IsLockFileName reports whether name is an Office owner file ("~$weekly.xlsx"),
// left next to a workbook while it is open in Excel.
func IsLockFileName(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "~$")
}

// FileValidator checks input and output paths of file based conversions.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a file validator. A nil logger falls back to slog.Default.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputFile accepts an existing, readable .xlsx, .xlsm or .csv file.
func (v *FileValidator) ValidateInputFile(path string) error {
	if err := v.checkInputName(path); err != nil {
		v.logger.Warn("Input file rejected", slog.String("file", path), slog.String("reason", err.Error()))
		return err
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("file %s does not exist", path)
	case err != nil:
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable", slog.String("file", path), slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("Input file validated", slog.String("file", path), slog.Int64("size", info.Size()))
	return nil
}

func (v *FileValidator) checkInputName(path string) error {
	switch {
	case IsLockFileName(path):
		return fmt.Errorf("file %s is a temporary Excel file", path)
	case IsWorkbookName(path), IsCSVName(path):
		return nil
	default:
		return fmt.Errorf("file %s is not a supported input (want .xlsx, .xlsm or .csv, got %q)", path, filepath.Ext(path))
	}
}

// ValidateOutputDirectory creates dir if needed and checks that it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory", slog.String("directory", dir), slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	scratch, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable", slog.String("directory", dir), slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	scratch.Close()
	os.Remove(scratch.Name())
	return nil
}
