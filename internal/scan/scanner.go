// Package scan implements the scanner: it
// enumerates candidate class files from configured bytecode roots,
// applying include/exclude glob filters for loose .class directories
// and for .jar/.war/.ear archives, and yields their raw bytes alongside
// a normalized SourceLocation.
package scan

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/shamash-asm/shamash/internal/facts"
)

// ScopeKind controls which classes a downstream rule considers
// "in scope" for role classification and graph external-bucket logic.
// Scanning itself always reads every matched class; Scope is recorded
// on Options for the orchestrator/rules to consult.
type ScopeKind int

const (
	ScopeProjectOnly ScopeKind = iota
	ScopeAllSources
	ScopeProjectWithExternalBuckets
)

// Options configures one Scan call.
type Options struct {
	BasePath       string
	Roots          []string
	OutputsGlobs   GlobSet
	JarGlobs       GlobSet
	FollowSymlinks bool
	MaxClasses     int
	MaxJarBytes    int64
	MaxClassBytes  int64
	Scope          ScopeKind
}

// WarningKind enumerates non-fatal scanner conditions.
type WarningKind int

const (
	WarnUnreadable WarningKind = iota
	WarnSizeCapExceeded
	WarnSymlinkCycle
	WarnMaxClassesReached
)

// Warning is one non-fatal scanner condition; the scan proceeds after
// emitting it.
type Warning struct {
	Kind WarningKind
	Path string
	Err  error
}

// Candidate is one scanned (location, bytes) pair awaiting extraction.
type Candidate struct {
	Location facts.SourceLocation
	Data     []byte
}

// Scan walks opts.Roots and returns a Candidate channel and a Warning
// channel. Both channels are closed once the (finite, non-restartable)
// scan completes or ctx is cancelled. The scan runs in its own
// goroutine; callers must drain both channels to avoid leaking it.
func Scan(ctx context.Context, opts Options) (<-chan Candidate, <-chan Warning) {
	candidates := make(chan Candidate, 64)
	warnings := make(chan Warning, 16)

	go func() {
		defer close(candidates)
		defer close(warnings)

		s := &scanner{
			opts:       opts,
			candidates: candidates,
			warnings:   warnings,
			visited:    make(map[string]bool),
		}
		s.run(ctx)
	}()

	return candidates, warnings
}

type scanner struct {
	opts       Options
	candidates chan<- Candidate
	warnings   chan<- Warning
	visited    map[string]bool // canonical dirs already walked, for symlink-cycle detection
	classCount int64
	stopped    atomic.Bool
}

func (s *scanner) run(ctx context.Context) {
	for _, root := range s.opts.Roots {
		if s.stopped.Load() || ctx.Err() != nil {
			return
		}
		s.walkRoot(ctx, root)
	}
}

func (s *scanner) walkRoot(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if s.stopped.Load() {
			return filepath.SkipAll
		}
		if err != nil {
			s.emitWarning(Warning{Kind: WarnUnreadable, Path: path, Err: err})
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			return s.handleSymlink(path)
		}

		s.handleFile(path)
		return nil
	})
}

// handleSymlink applies symlink-cycle detection via canonical path
// tracking. Regular directories are always descended into; WalkDir
// does not follow symlinked directories itself (it reports them as
// ModeSymlink entries without descending), so cycle detection only
// needs to guard this explicit EvalSymlinks-based descent.
func (s *scanner) handleSymlink(path string) error {
	if !s.opts.FollowSymlinks {
		return nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		s.emitWarning(Warning{Kind: WarnUnreadable, Path: path, Err: err})
		return nil
	}
	if s.visited[resolved] {
		s.emitWarning(Warning{Kind: WarnSymlinkCycle, Path: path})
		return nil
	}
	s.visited[resolved] = true

	info, err := os.Stat(resolved)
	if err != nil {
		s.emitWarning(Warning{Kind: WarnUnreadable, Path: path, Err: err})
		return nil
	}
	if info.IsDir() {
		s.walkRoot(context.Background(), resolved)
		return nil
	}
	s.handleFile(resolved)
	return nil
}

func (s *scanner) handleFile(path string) {
	normalized := NormalizePath(path)

	ext := filepath.Ext(path)
	switch {
	case (ext == ".jar" || ext == ".war" || ext == ".ear") && s.opts.JarGlobs.Match(normalized):
		s.handleArchive(path, normalized)
	case s.opts.OutputsGlobs.Match(normalized) && ext == ".class":
		s.handleClassFile(path, normalized)
	}
}

func (s *scanner) handleClassFile(path, normalized string) {
	if !s.takeClassSlot() {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		s.emitWarning(Warning{Kind: WarnUnreadable, Path: normalized, Err: err})
		return
	}
	if s.opts.MaxClassBytes > 0 && info.Size() > s.opts.MaxClassBytes {
		s.emitWarning(Warning{Kind: WarnSizeCapExceeded, Path: normalized})
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.emitWarning(Warning{Kind: WarnUnreadable, Path: normalized, Err: err})
		return
	}

	s.emitCandidate(Candidate{
		Location: facts.SourceLocation{OriginKind: facts.OriginDirClass, OriginPath: normalized},
		Data:     data,
	})
}

func (s *scanner) handleArchive(path, normalized string) {
	info, err := os.Stat(path)
	if err != nil {
		s.emitWarning(Warning{Kind: WarnUnreadable, Path: normalized, Err: err})
		return
	}
	if s.opts.MaxJarBytes > 0 && info.Size() > s.opts.MaxJarBytes {
		s.emitWarning(Warning{Kind: WarnSizeCapExceeded, Path: normalized})
		return
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		s.emitWarning(Warning{Kind: WarnUnreadable, Path: normalized, Err: err})
		return
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if s.stopped.Load() {
			return
		}
		if filepath.Ext(entry.Name) != ".class" {
			continue
		}
		if !s.takeClassSlot() {
			return
		}
		if s.opts.MaxClassBytes > 0 && int64(entry.UncompressedSize64) > s.opts.MaxClassBytes {
			s.emitWarning(Warning{Kind: WarnSizeCapExceeded, Path: normalized + "!/" + entry.Name})
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			s.emitWarning(Warning{Kind: WarnUnreadable, Path: normalized + "!/" + entry.Name, Err: err})
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			s.emitWarning(Warning{Kind: WarnUnreadable, Path: normalized + "!/" + entry.Name, Err: err})
			continue
		}

		s.emitCandidate(Candidate{
			Location: facts.SourceLocation{
				OriginKind:    facts.OriginJarEntry,
				OriginPath:    normalized,
				ContainerPath: normalized,
				EntryPath:     NormalizePath(entry.Name),
			},
			Data: data,
		})
	}
}

// takeClassSlot enforces maxClasses, emitting the sentinel warning
// exactly once when the cap is reached.
func (s *scanner) takeClassSlot() bool {
	if s.opts.MaxClasses <= 0 {
		return true
	}
	n := atomic.AddInt64(&s.classCount, 1)
	if n > int64(s.opts.MaxClasses) {
		if s.stopped.CompareAndSwap(false, true) {
			s.emitWarning(Warning{Kind: WarnMaxClassesReached})
		}
		return false
	}
	return true
}

func (s *scanner) emitCandidate(c Candidate) {
	s.candidates <- c
}

func (s *scanner) emitWarning(w Warning) {
	s.warnings <- w
}
