package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/hardware"
)

// HardwareFile is the name of the artifact consumed by the job submission step.
const HardwareFile = "hardware.json"

// artifactIndent matches the layout downstream tooling already parses.
const artifactIndent = "    "

// MarshalTier encodes t as the hardware file body.
func MarshalTier(t hardware.Tier) ([]byte, error) {
	return json.MarshalIndent(t, "", artifactIndent)
}

// maxSymlinks bounds symlink resolution of the hardware file.
const maxSymlinks = 40

// WriteHardwareFile writes t to HardwareFile inside dir and returns its path.
// The body goes to a temporary file next to the target first and is renamed
// into place, so readers never see a partial file. An existing file is
// replaced but keeps its permissions. A new file gets 0666 less the umask.
// A symlinked HardwareFile is written through: the file it points to is
// replaced and the link stays.
func WriteHardwareFile(dir string, t hardware.Tier) (string, error) {
	path := filepath.Join(dir, HardwareFile)

	data, err := MarshalTier(t)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	target, err := resolveTarget(path)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	tmpName := filepath.Join(filepath.Dir(target), "."+HardwareFile+"."+uuid.NewString())
	logger.Debug("writing hardware file", "path", path, "target", target, "tmp", tmpName)

	tmp, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	perm, keep := existingPerm(target)
	if err := writeAndClose(tmp, data, perm, keep); err != nil {
		_ = os.Remove(tmpName)
		return "", &WriteError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return "", &WriteError{Path: path, Err: fmt.Errorf("replacing file: %w", err)}
	}

	return path, nil
}

// resolveTarget follows symlinks at path, including a dangling last link,
// and returns the file that should be replaced.
func resolveTarget(path string) (string, error) {
	for i := 0; i < maxSymlinks; i++ {
		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return path, nil
		}

		link, err := os.Readlink(path)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(path), link)
		}
		path = link
	}
	return "", fmt.Errorf("resolving %s: too many levels of symbolic links", path)
}

// existingPerm returns the permissions of the regular file at path, or
// false when there is none to keep.
func existingPerm(path string) (perm fs.FileMode, ok bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Mode().Perm(), true
}

// writeAndClose writes data to f, applies perm when keep is set, and closes it.
func writeAndClose(f *os.File, data []byte, perm fs.FileMode, keep bool) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if keep {
		if err := f.Chmod(perm); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
