package combiner

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// WriteSMILES writes one structure per line, each newline-terminated.
func WriteSMILES(w io.Writer, structures []string) error {
	bw := bufio.NewWriter(w)
	for _, s := range structures {
		if _, err := bw.WriteString(s + "\n"); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "write structure")
		}
	}
	if err := bw.Flush(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "flush structures")
	}
	return nil
}

// WriteSMILESFile writes structures to path, creating parent directories and
// replacing any existing file.  The structures go to a temporary file in the
// same directory which is renamed over path once complete, so readers never
// see a partial library.
func WriteSMILESFile(path string, structures []string) (err error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return apperrors.Wrap(mkErr, apperrors.ErrCodeOutputWrite, "create output directory").WithDetail(dir)
		}
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "create output file").WithDetail(path)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = WriteSMILES(f, structures); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "sync output file").WithDetail(path)
	}
	if err = f.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "close output file").WithDetail(path)
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "set output file mode").WithDetail(path)
	}
	if err = os.Rename(tmp, path); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "replace output file").WithDetail(path)
	}
	return nil
}

//Personal.AI order the ending
