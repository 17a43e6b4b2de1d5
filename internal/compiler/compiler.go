// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
	"gopkg.microglot.org/fnc.go/internal/iter"
	"gopkg.microglot.org/fnc.go/internal/target"
)

type Option func(c *compiler) error

func OptionWithFS(fs idl.FileSystem) Option {
	return func(c *compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

// OptionWithMaxConcurrency limits the number of files lexed at once. Zero
// selects a limit based on the available CPUs.
func OptionWithMaxConcurrency(v int) Option {
	return func(c *compiler) error {
		if v < 0 {
			return exc.Newf(exc.Location{}, exc.CodeInvalidConfig, "max concurrency must not be negative, got %d", v)
		}
		c.MaxConcurrency = v
		return nil
	}
}

func OptionWithLogger(log logrus.FieldLogger) Option {
	return func(c *compiler) error {
		c.Log = log
		return nil
	}
}

func OptionWithSubCompilers(scs map[idl.FileKind]SubCompiler) Option {
	return func(c *compiler) error {
		c.SubCompilers = scs
		return nil
	}
}

func New(opts ...Option) (idl.Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.SubCompilers == nil {
		c.SubCompilers = DefaultSubCompilers()
	}
	if c.Log == nil {
		l := logrus.New()
		l.Out = io.Discard
		c.Log = l
	}
	return c, nil
}

type compiler struct {
	LookupENV      func(string) (string, bool)
	FS             idl.FileSystem
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
	SubCompilers   map[idl.FileKind]SubCompiler
	Log            logrus.FieldLogger
}

// Compile lexes every file named by the request. Each file is all or nothing
// but a failing file does not stop the others. All reported exceptions are
// returned together as a MultiException alongside the files that succeeded.
func (self *compiler) Compile(ctx context.Context, req *idl.CompileRequest) (*idl.CompileResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files := make([]idl.File, 0, len(req.Files))
	for _, f := range req.Files {
		uri := target.Normalize(f)
		in, err := self.FS.Open(ctx, uri)
		if err != nil {
			if e := self.report(uri, err); e != nil {
				self.Log.WithField("uri", uri).WithError(e).Debug("failed to open target")
			}
			continue
		}
		known := iter.NewIteratorFilter(iter.NewSlice(in), iter.FilterFunc[idl.File](func(ctx context.Context, f idl.File) bool {
			return f.Kind(ctx) != idl.FileKindNone
		}))
		kept, _ := iter.Collect(ctx, known)
		files = append(files, kept...)
	}

	loaded := &sync.Map{}
	results := make(chan fileResult, len(files))
	for _, file := range files {
		go func(file idl.File) {
			lexed, err := self.compileFile(ctx, file, loaded)
			results <- fileResult{lexed, err}
		}(file)
	}

	lexed := make([]*idl.LexedFile, 0, len(files))
	for x := 0; x < len(files); x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.err != nil {
				if _, ok := result.err.(exc.Exception); !ok {
					return nil, result.err
				}
				continue
			}
			if result.file != nil {
				lexed = append(lexed, result.file)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(lexed, func(i int, j int) bool {
		return lexed[i].URI < lexed[j].URI
	})

	resp := &idl.CompileResponse{
		Image: &idl.Image{Files: lexed},
	}
	caught := self.Reporter.Reported()
	if len(caught) > 0 {
		return resp, MultiException(caught)
	}
	return resp, nil
}

func (self *compiler) compileFile(ctx context.Context, file idl.File, loaded *sync.Map) (*idl.LexedFile, error) {
	if err := self.Semaphore.Lock(ctx); err != nil {
		return nil, err
	}
	defer self.Semaphore.Unlock()
	uri := file.Path(ctx)
	if _, ok := loaded.LoadOrStore(uri, true); ok {
		return nil, nil
	}
	log := self.Log.WithField("uri", uri)
	sc := self.SubCompilers[file.Kind(ctx)]
	if sc == nil {
		e := exc.New(exc.Location{URI: uri}, exc.CodeUnsupportedFileFormat, "unsupported file format")
		return nil, self.Reporter.Report(e)
	}
	log.Debug("lexing file")
	lexed, err := sc.CompileFile(ctx, self.Reporter, file)
	if err != nil {
		log.WithError(err).Debug("lexing failed")
		return nil, err
	}
	if lexed != nil {
		log.WithField("tokens", len(lexed.Tokens)).Debug("lexed file")
	}
	return lexed, nil
}

func (self *compiler) report(uri string, err error) exc.Exception {
	e, ok := err.(exc.Exception)
	if !ok {
		e = exc.WrapUnknown(exc.Location{URI: uri}, err)
	}
	return self.Reporter.Report(e)
}

type fileResult struct {
	file *idl.LexedFile
	err  error
}

// MultiException is every exception reported while compiling a request.
type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
