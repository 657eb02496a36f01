package runner

import (
	"os"
)

// tempScript is the per-run directory holding the script file. It never
// outlives the run that created it.
type tempScript struct {
	dir  string
	path string
}

func newTempScript(root, prefix, label, body string) (*tempScript, error) {
	dir, err := os.MkdirTemp(root, prefix)
	if err != nil {
		return nil, &IOError{Op: "create temp dir", Path: root, Err: err}
	}
	s := &tempScript{dir: dir}

	f, err := os.CreateTemp(dir, label+"-*.sh")
	if err != nil {
		s.remove()
		return nil, &IOError{Op: "create script", Path: dir, Err: err}
	}
	s.path = f.Name()

	if _, err := f.WriteString(body); err != nil {
		f.Close()
		s.remove()
		return nil, &IOError{Op: "write script", Path: s.path, Err: err}
	}
	// The child opens the file by name, so it must be on disk before spawn.
	if err := f.Sync(); err != nil {
		f.Close()
		s.remove()
		return nil, &IOError{Op: "sync script", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		s.remove()
		return nil, &IOError{Op: "close script", Path: s.path, Err: err}
	}
	return s, nil
}

func (s *tempScript) remove() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return &IOError{Op: "remove temp dir", Path: s.dir, Err: err}
	}
	return nil
}
