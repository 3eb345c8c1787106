package renderer

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher reports changes to one file. It never touches GL; the render
// thread polls Changed between frames.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	changed chan struct{}
}

// watchFile watches path's directory so editors that save by rename are
// still noticed.
func watchFile(path string) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	fw := &fileWatcher{watcher: w, changed: make(chan struct{}, 1)}
	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case fw.changed <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("Shader watcher error: %v", err)
			}
		}
	}()
	return fw, nil
}

// Changed reports whether the file changed since the last call.
func (fw *fileWatcher) Changed() bool {
	select {
	case <-fw.changed:
		return true
	default:
		return false
	}
}

func (fw *fileWatcher) Close() error {
	return fw.watcher.Close()
}
