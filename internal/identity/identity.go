// Package identity maps numeric user ids to account names.
package identity

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"sync"
)

// ErrUnknown is returned when a uid has no account.
var ErrUnknown = errors.New("identity: unknown uid")

// Directory resolves user names.
type Directory interface {
	LookupName(uid uint32) (string, error)
}

// Passwd is a Directory loaded from a passwd-format file
// ("name:x:uid:gid:gecos:home:shell").
type Passwd struct {
	names map[uint32]string
}

// LoadPasswd reads the file at path. Lines that do not parse are skipped.
func LoadPasswd(path string) (*Passwd, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("identity: open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	names := make(map[uint32]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 || fields[0] == "" {
			continue
		}
		uid, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			continue
		}
		// first entry wins, like getpwuid
		if _, ok := names[uint32(uid)]; !ok {
			names[uint32(uid)] = fields[0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("identity: scan %s: %w", path, err)
	}
	return &Passwd{names: names}, nil
}

func (p *Passwd) LookupName(uid uint32) (string, error) {
	if name, ok := p.names[uid]; ok {
		return name, nil
	}
	return "", ErrUnknown
}

// System queries the OS user database and memoizes answers, misses included.
type System struct {
	mu    sync.Mutex
	cache map[uint32]string
}

func NewSystem() *System {
	return &System{cache: make(map[uint32]string)}
}

func (s *System) LookupName(uid uint32) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.cache[uid]; ok {
		if name == "" {
			return "", ErrUnknown
		}
		return name, nil
	}
	var name string
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil {
		name = u.Username
	}
	s.cache[uid] = name
	if name == "" {
		return "", ErrUnknown
	}
	return name, nil
}
