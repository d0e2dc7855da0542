package chromedp_page

import (
	"sync"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/internal/repository"
)

type subscription struct {
	match  repository.ResponseMatcher
	handle repository.ResponseHandler
}

// subscribers fans one captured response out to every matching subscriber.
type subscribers struct {
	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
}

func (s *subscribers) add(match repository.ResponseMatcher, handle repository.ResponseHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]*subscription)
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = &subscription{match: match, handle: handle}

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) wanted(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.match(url) {
			return true
		}
	}
	return false
}

// dispatch calls handlers outside the lock so a handler may cancel its subscription.
func (s *subscribers) dispatch(msg entity.InterceptedMessage) int {
	s.mu.Lock()
	targets := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.match(msg.URL) {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		sub.handle(msg)
	}
	return len(targets)
}
