package crawler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

// ErrQueueFile marks frontier load/save failures. A missing or
// unreadable queue file fails the startup.
var ErrQueueFile = errors.New("crawler: queue file")

// Frontier is the FIFO of URLs awaiting processing.
type Frontier struct {
	items []urlx.URL
	head  int
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push appends a URL to the back.
func (f *Frontier) Push(u urlx.URL) {
	f.items = append(f.items, u)
}

// Pop removes and returns the front URL.
func (f *Frontier) Pop() (urlx.URL, bool) {
	if f.head >= len(f.items) {
		return urlx.URL{}, false
	}
	u := f.items[f.head]
	f.head++
	// Reclaim the consumed prefix once it dominates the slice.
	if f.head > 1024 && f.head*2 >= len(f.items) {
		f.items = append([]urlx.URL(nil), f.items[f.head:]...)
		f.head = 0
	}
	return u, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	return len(f.items) - f.head
}

// Save writes the frontier to path, overwriting the whole file.
// Format, little-endian: uint32 count, then per URL a uint32 byte
// length and the UTF-8 bytes.
func (f *Frontier) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueueFile, err)
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, uint32(f.Len())); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueFile, err)
	}
	for _, u := range f.items[f.head:] {
		raw := []byte(u.String())
		if err := binary.Write(file, binary.LittleEndian, uint32(len(raw))); err != nil {
			return fmt.Errorf("%w: %v", ErrQueueFile, err)
		}
		if _, err := file.Write(raw); err != nil {
			return fmt.Errorf("%w: %v", ErrQueueFile, err)
		}
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueFile, err)
	}
	return nil
}

// LoadFrontier reads a queue file saved by Save. Any error, including
// a missing file, fails the load.
func LoadFrontier(path string) (*Frontier, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: does not exist: %s", ErrQueueFile, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueueFile, err)
	}
	defer file.Close()

	var count uint32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: cannot read: %v", ErrQueueFile, err)
	}

	frontier := NewFrontier()
	for i := uint32(0); i < count; i++ {
		var length uint32
		if err := binary.Read(file, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("%w: cannot read: %v", ErrQueueFile, err)
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(file, raw); err != nil {
			return nil, fmt.Errorf("%w: cannot read: %v", ErrQueueFile, err)
		}
		u, err := urlx.Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: bad url %q: %v", ErrQueueFile, raw, err)
		}
		frontier.Push(u)
	}
	return frontier, nil
}
