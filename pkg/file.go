package finddups

import (
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// defaultBufferSize is used when no hash_buffer is configured (2MiB)
const defaultBufferSize = 2 * 1024 * 1024

// HashFileInterruptible hashes the full content of a file and returns the digest
// and the number of bytes hashed. Regular files are memory-mapped and hashed as a
// single in-memory unit, in bufferSize slices with a shutdown check between
// slices. Other files are streamed through a bufferSize buffer.
func HashFileInterruptible(filePath string, algorithm *HashAlgorithm, bufferSize int, shutdownChan <-chan struct{}) ([]byte, int64, error) {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}
	if info.IsDir() {
		return nil, 0, &os.PathError{Op: "read", Path: filePath, Err: unix.EISDIR}
	}

	hasher := algorithm.NewFunc()

	if info.Mode().IsRegular() && info.Size() > 0 && info.Size() <= int64(^uint(0)>>1) {
		data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
		if err == nil {
			defer unix.Munmap(data)
			// Advisory only
			_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

			if err := hashMapped(hasher, data, bufferSize, shutdownChan); err != nil {
				if errors.Is(err, errTruncated) {
					return nil, 0, &os.PathError{Op: "read", Path: filePath, Err: err}
				}
				return nil, 0, fmt.Errorf("hash of %s: %w", filePath, err)
			}
			return hasher.Sum(nil), int64(len(data)), nil
		}
		DebugLog(DebugHash, "mmap of %s failed, streaming instead: %v", filePath, err)
	}

	n, err := hashStream(hasher, file, bufferSize, shutdownChan)
	if err != nil {
		return nil, 0, fmt.Errorf("hash of %s: %w", filePath, err)
	}
	return hasher.Sum(nil), n, nil
}

// errTruncated is reported when a mapped file shrinks while it is being hashed
var errTruncated = errors.New("file truncated while reading")

// hashMapped feeds a mapped file to the hasher in bufferSize slices. Touching
// pages past a new end of file raises SIGBUS; that fault is turned into
// errTruncated instead of killing the process.
func hashMapped(hasher hash.Hash, data []byte, bufferSize int, shutdownChan <-chan struct{}) (err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			DebugLog(DebugHash, "fault while hashing mapped file: %v", fault)
			err = errTruncated
		}
	}()

	for offset := 0; offset < len(data); offset += bufferSize {
		select {
		case <-shutdownChan:
			return ErrAborted
		default:
		}

		end := offset + bufferSize
		if end > len(data) {
			end = len(data)
		}
		hasher.Write(data[offset:end])
	}
	return nil
}

// hashStream reads r to EOF, checking for shutdown signals between buffer reads
func hashStream(hasher hash.Hash, r io.Reader, bufferSize int, shutdownChan <-chan struct{}) (int64, error) {
	buffer := make([]byte, bufferSize)
	var total int64

	for {
		select {
		case <-shutdownChan:
			return total, ErrAborted
		default:
		}

		n, err := r.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			total += int64(n)
		}

		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read failed: %w", err)
		}
	}
}
