package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/4lbertR/CueWave/internal/utils"
)

// Watcher перечитывает файл конфигурации при его изменении
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	Changes chan *Config
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch следит за файлом конфигурации. Наблюдается каталог файла,
// потому что редакторы часто сохраняют файл через переименование.
func Watch(filePath string) (*Watcher, error) {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		path:    path,
		Changes: make(chan *Config, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close останавливает наблюдение и закрывает каналы
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Changes)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	// Файл перечитывается после паузы в событиях: запись редактора
	// часто приходит несколькими событиями подряд
	const settle = 100 * time.Millisecond
	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(settle)
		case <-timer.C:
			config, err := LoadConfig(w.path)
			if err != nil {
				w.send(nil, err)
				continue
			}
			w.send(config, nil)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(nil, err)
		case <-w.closeCh:
			return
		}
	}
}

// send отдает результат, заменяя непрочитанную конфигурацию свежей
func (w *Watcher) send(config *Config, err error) {
	if err != nil {
		select {
		case w.Errors <- err:
		default:
		}
		return
	}
	select {
	case <-w.Changes:
	default:
	}
	select {
	case w.Changes <- config:
	case <-w.closeCh:
	}
}
