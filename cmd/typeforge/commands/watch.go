/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watch.go
Description: The watch command. Generates once, then watches the directories of the
sample files and regenerates after changes. Bursts of events are debounced into one
run, and parsed samples are cached by path, size and modification time so only changed
files are parsed again.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kleascm/typeforge/pkg/logging"
	"github.com/kleascm/typeforge/pkg/pipeline"
	"github.com/kleascm/typeforge/pkg/value"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sampleFile is one parsed sample file
type sampleFile struct {
	Samples []*value.Value
	Size    int64
}

// sampleCache keeps parsed sample files keyed by path, size and modification time
type sampleCache struct {
	entries *lru.Cache[string, *sampleFile]
	limits  pipeline.Limits
	logger  *logging.Logger
}

func newSampleCache(size int, limits pipeline.Limits, logger *logging.Logger) (*sampleCache, error) {
	if size <= 0 {
		size = 1
	}
	entries, err := lru.New[string, *sampleFile](size)
	if err != nil {
		return nil, errors.Wrap(err, "create sample cache")
	}
	return &sampleCache{entries: entries, limits: limits, logger: logger}, nil
}

// Load returns the samples of path, parsing the file only when it changed. hit reports
// whether the cached samples were used. Files over the size limit are rejected before
// they are read.
func (c *sampleCache) Load(path string) (file *sampleFile, hit bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "stat sample %s", path)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if file, ok := c.entries.Get(key); ok {
		return file, true, nil
	}
	if err := c.limits.Check(c.logger, path, info.Size()); err != nil {
		return nil, false, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "open sample %s", path)
	}
	defer f.Close()

	samples, err := value.Decode(path, f)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decode %s", path)
	}
	file = &sampleFile{Samples: samples, Size: info.Size()}
	c.entries.Add(key, file)
	return file, false, nil
}

// watchSession regenerates one request whenever its files change
type watchSession struct {
	cmd      *cobra.Command
	logger   *logging.Logger
	pipeline *pipeline.Pipeline
	request  pipeline.Request
	files    []string // Absolute, cleaned
	cache    *sampleCache
	debounce time.Duration
}

// RunWatch executes the watch command
func RunWatch(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}
	logger, err := SetupLogging(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	req, err := buildRequest()
	if err != nil {
		return err
	}

	files := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "-" {
			return errors.WithHint(errors.New("cannot watch stdin"), "pass sample files to watch")
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return errors.Wrapf(err, "resolve %s", arg)
		}
		files = append(files, filepath.Clean(abs))
	}
	// Root naming follows the file names as given
	req.SourceNames = args

	sink, err := newSink(cmd, req)
	if err != nil {
		return err
	}
	cache, err := newSampleCache(viper.GetInt("watch.cache_size"), req.Limits, logger)
	if err != nil {
		return err
	}

	s := &watchSession{
		cmd:      cmd,
		logger:   logger,
		pipeline: pipeline.New(logger, sink),
		request:  req,
		files:    files,
		cache:    cache,
		debounce: viper.GetDuration("watch.debounce"),
	}
	return s.run(cmd.Context())
}

// run generates once and then on every debounced change until ctx is done
func (s *watchSession) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	// Editors often replace files, so the directories are watched rather than the files
	watched := make(map[string]bool, len(s.files))
	dirs := make(map[string]bool)
	for _, f := range s.files {
		watched[f] = true
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
		dirs[dir] = true
	}

	s.regenerate(ctx)
	s.logger.Info("Watching for changes", map[string]interface{}{
		"files":    len(s.files),
		"debounce": s.debounce,
	})

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Watch stopped", nil)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.LogWatch(event.Op.String(), event.Name)
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.regenerate(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warning("Watcher error", map[string]interface{}{"error": err})
		}
	}
}

// regenerate runs the pipeline over the current samples. Failures are logged and the
// session keeps watching, so a half-written sample does not end it.
func (s *watchSession) regenerate(ctx context.Context) {
	var samples []*value.Value
	var size int64
	hits := 0
	for _, f := range s.files {
		file, hit, err := s.cache.Load(f)
		if err != nil {
			s.logger.Error("Regeneration skipped", map[string]interface{}{"error": err})
			return
		}
		if hit {
			hits++
		}
		samples = append(samples, file.Samples...)
		size += file.Size
	}
	s.logger.Debug("Decoded samples", map[string]interface{}{
		"samples":    len(samples),
		"cache_hits": hits,
	})

	req := s.request
	req.Samples = samples
	req.SampleBytes = size
	report, err := s.pipeline.Run(ctx, req)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Regeneration failed", map[string]interface{}{"error": err})
		}
		return
	}
	printSummary(s.cmd.ErrOrStderr(), report)
}
