package datasource

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"
)

// Sessions hands out one AWS session per region, created on first use
type Sessions struct {
	profile string

	mu       sync.Mutex
	byRegion map[string]*session.Session
}

func NewSessions(profile string) *Sessions {
	return &Sessions{
		profile:  profile,
		byRegion: make(map[string]*session.Session),
	}
}

// Get returns the session for region
func (s *Sessions) Get(region string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byRegion[region]; ok {
		return sess, nil
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(region)},
		Profile:           s.profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create AWS session for %s", region)
	}
	s.byRegion[region] = sess
	return sess, nil
}
