// Package scanner drives a barcode scanning session on top of the
// video-decoding collaborator. The decoder itself is opaque: given a
// device handle it yields a lazy, cancelable stream of decoded strings.
package scanner

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/model"
	"github.com/libradesk/libradesk/pkg/latest"
)

// ErrNoDecode means the decode stream ended before anything was accepted.
var ErrNoDecode = errors.New("scan session ended without an accepted decode")

// DecodeSource is the barcode/video-decoding collaborator.
type DecodeSource interface {
	Decodes(ctx context.Context, device string) (<-chan string, error)
}

// Lookuper resolves an identifier to zero or one bibliographic record.
type Lookuper interface {
	Lookup(ctx context.Context, identifier string) (*model.BibRecord, int, error)
}

// Accept filters raw decodes; rejected ones are skipped silently.
type Accept func(code string) bool

// IsISBN accepts 10- or 13-digit identifiers, ignoring dashes and spaces.
func IsISBN(code string) bool {
	code = strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, code)
	if len(code) != 10 && len(code) != 13 {
		return false
	}
	for i, r := range code {
		if r >= '0' && r <= '9' {
			continue
		}
		// ISBN-10 allows a trailing X check digit
		if len(code) == 10 && i == 9 && (r == 'X' || r == 'x') {
			continue
		}
		return false
	}
	return true
}

type Result struct {
	Identifier string
	Record     *model.BibRecord
}

type Session struct {
	src    DecodeSource
	lookup Lookuper
	log    *zap.Logger
}

func NewSession(src DecodeSource, lookup Lookuper, log *zap.Logger) *Session {
	return &Session{
		src:    src,
		lookup: lookup,
		log:    log.Named("scanner"),
	}
}

// Run consumes the decode stream and emits a Result per accepted decode,
// enriched with a bibliographic record when the lookup resolves in time.
// Lookups race the stream: every accepted decode supersedes the previous
// one, and a lookup response arriving after a newer decode is dropped.
// Canceling the context ends the session; the stream restarts cleanly on
// the next Run.
func (s *Session) Run(ctx context.Context, device string, accept Accept) (<-chan Result, error) {
	decodes, err := s.src.Decodes(ctx, device)
	if err != nil {
		return nil, err
	}

	results := make(chan Result)
	go func() {
		defer close(results)

		var guard latest.Guard
		resolved := make(chan resolvedLookup)
		// lookups launched but not yet resolved; the stream may end while
		// one is still in flight and its result must not be lost
		pending := 0
		for {
			select {
			case <-ctx.Done():
				return
			case code, ok := <-decodes:
				if !ok {
					if pending == 0 {
						return
					}
					decodes = nil
					continue
				}
				if !accept(code) {
					s.log.Debug("decode rejected", zap.String("code", code))
					continue
				}
				pending++
				seq := guard.Next()
				go func() {
					rec, _, err := s.lookup.Lookup(ctx, code)
					if err != nil {
						s.log.Debug("lookup failed", zap.String("identifier", code), zap.Error(err))
						rec = nil
					}
					select {
					case resolved <- resolvedLookup{seq: seq, identifier: code, record: rec}:
					case <-ctx.Done():
					}
				}()
			case r := <-resolved:
				pending--
				if guard.Accept(r.seq) {
					select {
					case results <- Result{Identifier: r.identifier, Record: r.record}:
					case <-ctx.Done():
						return
					}
				} else {
					s.log.Debug("stale lookup dropped", zap.String("identifier", r.identifier))
				}
				if decodes == nil && pending == 0 {
					return
				}
			}
		}
	}()
	return results, nil
}

// ScanOne resolves to the first accepted decode of a session and stops
// the stream.
func (s *Session) ScanOne(ctx context.Context, device string, accept Accept) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := s.Run(ctx, device, accept)
	if err != nil {
		return Result{}, err
	}
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r, ok := <-results:
		if !ok {
			return Result{}, ErrNoDecode
		}
		return r, nil
	}
}

type resolvedLookup struct {
	seq        uint64
	identifier string
	record     *model.BibRecord
}
