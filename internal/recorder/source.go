package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"voicenote-service/internal/models"
)

// DefaultChunkSize is used when a source is given no chunk size
const DefaultChunkSize = 32 * 1024

// ErrSourceClosed is returned when pushing to a stream that has been stopped
var ErrSourceClosed = errors.New("audio source closed")

// Stream yields encoded audio chunks until io.EOF
type Stream interface {
	ReadChunk() ([]byte, error)
	MIMEType() string
	Close() error
}

// Source opens an audio stream. Open fails with an error wrapping
// models.ErrPermissionDenied when capture is not allowed.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

var audioTypes = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
}

// MIMETypeFor guesses an audio mime type from a file name
func MIMETypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ReaderSource streams from an io.Reader, such as an uploaded file.
// It can be opened once.
type ReaderSource struct {
	Reader    io.Reader
	MIME      string
	ChunkSize int

	mu     sync.Mutex
	opened bool
}

func (s *ReaderSource) Open(ctx context.Context) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil, errors.New("reader source already used")
	}
	s.opened = true
	return newReaderStream(s.Reader, nil, s.MIME, s.ChunkSize), nil
}

// Opened reports whether a recording has taken this source
func (s *ReaderSource) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// FileSource streams a local audio file
type FileSource struct {
	Path      string
	ChunkSize int
}

func (s *FileSource) Open(ctx context.Context) (Stream, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v", models.ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	return newReaderStream(f, f, MIMETypeFor(s.Path), s.ChunkSize), nil
}

type readerStream struct {
	r      io.Reader
	closer io.Closer
	mime   string
	size   int
}

func newReaderStream(r io.Reader, closer io.Closer, mimeType string, size int) *readerStream {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	return &readerStream{r: r, closer: closer, mime: mimeType, size: size}
}

func (s *readerStream) ReadChunk() ([]byte, error) {
	buf := make([]byte, s.size)
	n, err := io.ReadFull(s.r, buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return nil, err
}

func (s *readerStream) MIMEType() string { return s.mime }

func (s *readerStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// PushSource receives chunks from a remote client, one recording per source
type PushSource struct {
	mu     sync.Mutex
	mime   string
	chunks chan []byte
	opened bool
	closed bool
}

// NewPushSource creates a source for audio of the given mime type
func NewPushSource(mimeType string) *PushSource {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	return &PushSource{
		mime:   mimeType,
		chunks: make(chan []byte, 64),
	}
}

func (s *PushSource) Open(ctx context.Context) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil, errors.New("push source already used")
	}
	s.opened = true
	return s, nil
}

// Opened reports whether a recording has taken this source
func (s *PushSource) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Push queues one chunk, blocking while the buffer is full
func (s *PushSource) Push(ctx context.Context, chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	select {
	case s.chunks <- append([]byte(nil), chunk...):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReadChunk drains queued chunks, returning io.EOF once closed and empty
func (s *PushSource) ReadChunk() ([]byte, error) {
	chunk, ok := <-s.chunks
	if !ok {
		return nil, io.EOF
	}
	return chunk, nil
}

func (s *PushSource) MIMEType() string { return s.mime }

func (s *PushSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.chunks)
	}
	return nil
}
