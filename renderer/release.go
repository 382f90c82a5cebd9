// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	log "github.com/sirupsen/logrus"
)

// releaseStack destroys resources in the reverse order of creation.
type releaseStack struct {
	entries []releaseEntry
}

type releaseEntry struct {
	name    string
	release func()
}

func (s *releaseStack) push(name string, release func()) {
	s.entries = append(s.entries, releaseEntry{name: name, release: release})
}

func (s *releaseStack) len() int {
	return len(s.entries)
}

func (s *releaseStack) unwind(logger log.FieldLogger) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		e.release()
		logger.WithField("resource", e.name).Debug("released")
	}
	s.entries = nil
}
