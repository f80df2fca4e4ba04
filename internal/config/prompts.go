package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Prompts maps role names to system prompt overrides. Roles absent
// from the file keep their built-in prompts.
type Prompts map[string]string

// PromptsPath returns the user prompts file path.
func PromptsPath() string {
	return filepath.Join(getUserConfigDir(), "prompts.yaml")
}

// LoadPrompts reads role prompt overrides from a YAML file. A missing
// file is not an error and yields an empty map.
func LoadPrompts(path string) (Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Prompts{}, nil
		}
		return nil, fmt.Errorf("reading prompts from %s: %w", path, err)
	}

	prompts := Prompts{}
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("parsing prompts from %s: %w", path, err)
	}
	return prompts, nil
}

// PromptWatcher reloads prompt overrides when the file changes.
type PromptWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchPrompts watches path and invokes onChange with freshly loaded
// prompts after each write. Parse errors are skipped, keeping the
// last good set.
func WatchPrompts(path string, onChange func(Prompts)) (*PromptWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create prompts watcher: %w", err)
	}

	// Watch the directory: editors often replace the file on save,
	// which drops a watch on the file itself.
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("create prompts directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	pw := &PromptWatcher{watcher: watcher, done: make(chan struct{})}

	go func() {
		for {
			select {
			case <-pw.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if prompts, err := LoadPrompts(path); err == nil {
					onChange(prompts)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return pw, nil
}

// Close stops the watcher.
func (pw *PromptWatcher) Close() error {
	close(pw.done)
	return pw.watcher.Close()
}
