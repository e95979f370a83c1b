package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

// ErrClosed はClose後の書き込みを表す
var ErrClosed = errors.New("sink is closed")

// CompressedSuffix はzstd圧縮して出力するパスの拡張子
const CompressedSuffix = ".zst"

// IsCompressed はpathが圧縮出力かどうかを返す
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedSuffix)
}

// FileSink はワークロードをファイルへ書き出す
// ファイルは最初の書き込み時に開かれ、Closeで一度だけ閉じられる
type FileSink struct {
	fs   afero.Fs
	path string

	file   afero.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	lines  int
	closed bool
}

// NewFileSink は新しいFileSinkを作成する
func NewFileSink(fs afero.Fs, path string) *FileSink {
	return &FileSink{
		fs:   fs,
		path: path,
	}
}

// Path は出力先を返す
func (s *FileSink) Path() string {
	return s.path
}

// Lines は書き込んだ行数を返す
func (s *FileSink) Lines() int {
	return s.lines
}

func (s *FileSink) open() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := s.fs.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}

	var w io.Writer = file
	if IsCompressed(s.path) {
		enc, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		s.enc = enc
		w = enc
	}

	s.file = file
	s.w = bufio.NewWriter(w)
	return nil
}

// WriteLine は1行を書き込む
func (s *FileSink) WriteLine(line string) error {
	if s.closed {
		return ErrClosed
	}
	if s.file == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	s.lines++
	return nil
}

// Close はバッファをフラッシュしてファイルを閉じる
// 一度も書き込んでいなければファイルは作られない
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.file == nil {
		return nil
	}

	var errs []error
	if err := s.w.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush output: %w", err))
	}
	if s.enc != nil {
		if err := s.enc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to finish zstd stream: %w", err))
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close output file: %w", err))
	}
	return errors.Join(errs...)
}

// WriterSink は任意のio.Writerへ行を書き出す（標準出力など）
type WriterSink struct {
	w     *bufio.Writer
	lines int
}

// NewWriterSink は新しいWriterSinkを作成する
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

// WriteLine は1行を書き込む
func (s *WriterSink) WriteLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	s.lines++
	return nil
}

// Lines は書き込んだ行数を返す
func (s *WriterSink) Lines() int {
	return s.lines
}

// Close はバッファをフラッシュする（下位のWriterは閉じない）
func (s *WriterSink) Close() error {
	return s.w.Flush()
}
